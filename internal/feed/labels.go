// Package feed simulates a sign-language classifier by emitting random
// predictions on a fixed period while the camera session is active.
package feed

// Labels is the closed set of signs the simulator can emit.
var Labels = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"Hello", "Thank you", "Please", "Sorry", "Yes", "No",
}

// IsLabel reports whether s is one of Labels.
func IsLabel(s string) bool {
	for _, l := range Labels {
		if l == s {
			return true
		}
	}
	return false
}
