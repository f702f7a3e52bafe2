package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"
	"msgr/internal/app"
	"msgr/internal/profile"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fxApp := fx.New(
		app.Module(app.Params{Profile: name}),
		// fx's own report lines would tear the TUI.
		fx.NopLogger,
	)

	fxApp.Run()
}
