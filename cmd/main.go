package main

import (
	"os"

	"github.com/fjod/go_cart/storefront/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
