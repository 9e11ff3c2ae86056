// issue-service-token mints a bearer token for the storefront service
// to call the read-only /service routes.
//
// Usage:
//
//	API_SECRET=... TOKEN_HOUR_LIFESPAN=720 go run ./cmd/issue-service-token
package main

import (
	"fmt"
	"os"

	"github.com/cactuscup/admin_backend/utils"
)

func main() {
	token, err := utils.JwtGenerate(0, utils.ScopeService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
