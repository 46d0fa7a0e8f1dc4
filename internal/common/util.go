package common

// WipeByteArray overwrites b with zeros. Passwords read from the terminal are
// wiped as soon as the request that needed them has been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
