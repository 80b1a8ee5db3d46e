package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateResetCode generates a 6-digit password reset code
func GenerateResetCode() string {
	// Uniformly random in the range 100000-999999
	max := big.NewInt(900000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand reading from the OS entropy pool does not fail in practice
		panic(fmt.Sprintf("reset code generation: %v", err))
	}

	return fmt.Sprintf("%06d", n.Int64()+100000)
}
