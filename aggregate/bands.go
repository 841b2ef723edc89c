package aggregate

// Distance bands in furlongs. Races under 5f join the shortest band.
const (
	Band5to6   = "5-6f"
	Band7to8   = "7-8f"
	Band9to11  = "9-11f"
	Band12to14 = "12-14f"
	Band15Plus = "15f+"
)

// Band returns the band for a distance in furlongs, or "" when the
// distance is unknown.
func Band(furlongs float64) string {
	switch {
	case furlongs <= 0:
		return ""
	case furlongs < 6.5:
		return Band5to6
	case furlongs < 8.5:
		return Band7to8
	case furlongs < 11.5:
		return Band9to11
	case furlongs < 14.5:
		return Band12to14
	default:
		return Band15Plus
	}
}
