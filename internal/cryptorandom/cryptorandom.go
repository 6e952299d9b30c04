package cryptorandom

import "crypto/rand"

func RandomBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	_, err := rand.Read(data)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Digits returns n uniformly distributed decimal digits.
func Digits(n int) (string, error) {
	digits := make([]byte, 0, n)
	for len(digits) < n {
		data, err := RandomBytes(n - len(digits))
		if err != nil {
			return "", err
		}

		for _, b := range data {
			// 250 is the largest multiple of 10 that fits in a byte.
			if b < 250 {
				digits = append(digits, '0'+b%10)
			}
		}
	}

	return string(digits), nil
}
