// Command gensecret prints a random value suitable for AUTH_SECRET.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/tabkeeper/pkg/cryptox"
)

func main() {
	fs := pflag.NewFlagSet("gensecret", pflag.ExitOnError)
	env := fs.Bool("env", false, "Print as an AUTH_SECRET= line for a .env file")
	_ = fs.Parse(os.Args[1:])

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Fatalf("failed to generate secret: %v", err)
	}

	if *env {
		fmt.Printf("AUTH_SECRET=%s\n", secret)
		return
	}
	fmt.Println(secret)
}
