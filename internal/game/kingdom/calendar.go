package kingdom

// Months is the fixed twelve-month calendar the turn counter walks through.
var Months = []string{
	"Abadius", "Calistril", "Pharast", "Gozran", "Desnus", "Sarenith",
	"Erastus", "Arodus", "Rova", "Lamashan", "Neth", "Kuthona",
}

// MonthName returns the calendar name for month index m (taken modulo 12).
func MonthName(m int) string {
	m %= len(Months)
	if m < 0 {
		m += len(Months)
	}
	return Months[m]
}

// NextMonth advances (month, year) by one month, rolling the year over when
// the calendar wraps from the last month back to the first.
func NextMonth(month, year int) (int, int) {
	month++
	if month >= len(Months) {
		return 0, year + 1
	}
	return month, year
}
