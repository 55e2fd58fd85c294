package scoring

// Classification is the tier an inspection lands in.
type Classification string

const (
	ClassRejected     Classification = "REJECTED"
	ClassPending      Classification = "PENDING"
	ClassUnclassified Classification = "UNCLASSIFIED"
	ClassEssential    Classification = "ESSENTIAL_TIER"
	ClassSelect       Classification = "SELECT_TIER"
	ClassPrime        Classification = "PRIME_TIER"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassRejected, ClassPending, ClassUnclassified, ClassEssential, ClassSelect, ClassPrime:
		return true
	}
	return false
}

// ID is the numeric classification id sent in submission payloads.
func (c Classification) ID() int {
	switch c {
	case ClassEssential:
		return 1
	case ClassSelect:
		return 2
	case ClassPrime:
		return 3
	case ClassRejected:
		return 4
	case ClassUnclassified:
		return 5
	default:
		return 0
	}
}

// Label is the human-readable tier name shown on the dashboard and sticker.
func (c Classification) Label() string {
	switch c {
	case ClassRejected:
		return "Rechazado"
	case ClassPending:
		return "Pendiente de clasificación"
	case ClassUnclassified:
		return "Sin clasificación"
	case ClassEssential:
		return "Esencial"
	case ClassSelect:
		return "Select"
	case ClassPrime:
		return "Prime"
	}
	return string(c)
}

// Classify maps a complete, non-zero score to its tier.
func Classify(score int, b Banding) Classification {
	switch {
	case score < b.SelectFrom:
		return ClassEssential
	case score < b.PrimeFrom:
		return ClassSelect
	default:
		return ClassPrime
	}
}
