package implant

import "strconv"

// Bijective26 returns the bijective base-26 name of index i: 0 is "A",
// 25 is "Z", 26 is "AA", 27 is "AB". There is no zero digit, so "AA"
// follows "Z" the way spreadsheet columns roll over.
func Bijective26(i int) string {
	i++
	var b []byte
	for i > 0 {
		i--
		b = append([]byte{byte('A' + i%26)}, b...)
		i /= 26
	}
	return string(b)
}

// AlphabeticNames returns the first n bijective base-26 names: A-Z, AA-AZ,
// BA-BZ, and so on.
func AlphabeticNames(n int) []string {
	return AlphabeticRange(0, n)
}

// AlphabeticRange returns the bijective base-26 names for indices lo through
// hi-1.
func AlphabeticRange(lo, hi int) []string {
	if hi <= lo {
		return nil
	}
	names := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		names = append(names, Bijective26(i))
	}
	return names
}

// NumericNames returns the decimal names "1" through "n".
func NumericNames(n int) []string {
	if n <= 0 {
		return nil
	}
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		names = append(names, strconv.Itoa(i))
	}
	return names
}
