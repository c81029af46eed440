package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/whisapp/whis-desktop/internal/app"
	"github.com/whisapp/whis-desktop/internal/config"
	"github.com/whisapp/whis-desktop/internal/ipc"
)

const version = "v0.3.0"

func usage() {
	fmt.Printf(`Whis %s - voice typing for the desktop

Usage: whis-desktop [OPTION]

Options:
  -t, --toggle   Toggle recording in the running instance and exit
  -h, --help     Show this help and exit

Without options, starts the tray application.
`, version)
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--toggle", "-t":
			if err := ipc.SendToggle(); err != nil {
				if errors.Is(err, ipc.ErrNoRunningInstance) {
					fmt.Fprintln(os.Stderr, "No running Whis instance found.")
				} else {
					fmt.Fprintf(os.Stderr, "Failed to send toggle: %v\n", err)
				}
				os.Exit(1)
			}
			return
		case "--help", "-h":
			usage()
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown option: %s\n\n", os.Args[1])
			usage()
			os.Exit(1)
		}
	}

	log.Printf("Whis %s starting...", version)

	settingsPath, err := config.DefaultPath()
	if err != nil {
		log.Fatalf("Error locating settings: %v", err)
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}

	application, err := app.New(settings, version)
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	application.Run()
}
