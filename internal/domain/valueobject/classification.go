package valueobject

import "fmt"

// Classification is a client's standing derived from their loan portfolio.
type Classification struct {
	value string
}

const (
	classificationPunctual           = "PUNCTUAL"
	classificationRegular            = "REGULAR"
	classificationDelinquent         = "DELINQUENT"
	classificationSeverelyDelinquent = "SEVERELY_DELINQUENT"
)

var (
	ClassificationPunctual           = Classification{value: classificationPunctual}
	ClassificationRegular            = Classification{value: classificationRegular}
	ClassificationDelinquent         = Classification{value: classificationDelinquent}
	ClassificationSeverelyDelinquent = Classification{value: classificationSeverelyDelinquent}
)

var validClassifications = map[string]Classification{
	classificationPunctual:           ClassificationPunctual,
	classificationRegular:            ClassificationRegular,
	classificationDelinquent:         ClassificationDelinquent,
	classificationSeverelyDelinquent: ClassificationSeverelyDelinquent,
}

// NewClassification creates a Classification from a raw string.
func NewClassification(s string) (Classification, error) {
	v, ok := validClassifications[s]
	if !ok {
		return Classification{}, fmt.Errorf("invalid classification: %q", s)
	}
	return v, nil
}

// String returns the string representation of the classification.
func (c Classification) String() string { return c.value }

// IsZero returns true if the classification has not been initialised.
func (c Classification) IsZero() bool { return c.value == "" }

// Equal returns true when both classifications carry the same value.
func (c Classification) Equal(other Classification) bool { return c.value == other.value }

// severity orders classifications from best to worst standing.
func (c Classification) severity() int {
	switch c.value {
	case classificationPunctual:
		return 0
	case classificationRegular:
		return 1
	case classificationDelinquent:
		return 2
	case classificationSeverelyDelinquent:
		return 3
	default:
		return -1
	}
}

// WorseThan reports whether c represents worse standing than other.
func (c Classification) WorseThan(other Classification) bool {
	return c.severity() > other.severity()
}
