package anim

// Technology identifies the link technology a pending-event table belongs
// to. Adding a technology only requires a new constant and table; the
// correlation algorithm is shared.
type Technology int

// The link technologies with dedicated pending-event tables.
const (
	TechWifi Technology = iota
	TechWimax
	TechLte
	TechCsma

	numTechnologies
)

func (t Technology) String() string {
	switch t {
	case TechWifi:
		return "wifi"
	case TechWimax:
		return "wimax"
	case TechLte:
		return "lte"
	case TechCsma:
		return "csma"
	default:
		return "unknown"
	}
}
