package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/homewatch/homewatch/config"
	"github.com/homewatch/homewatch/services"
	"github.com/homewatch/homewatch/services/camera"
	"github.com/homewatch/homewatch/services/dashboard"
	"github.com/homewatch/homewatch/services/garage"
	"github.com/homewatch/homewatch/services/motion"
)

func registerServices() {
	// register available services
	services.Register(&camera.Service{})
	services.Register(&dashboard.Service{})
	services.Register(&garage.Service{})
	services.Register(&motion.Service{})
}

func usage() {
	fmt.Println("Usage: homewatch COMMAND [ARGS]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("   run     service...      Run services (" + strings.Join(services.Registered(), ", ") + ")")
	fmt.Println("   publish topic payload   Publish one message to the local broker")
	fmt.Println("   config                  Show the resolved configuration")
	fmt.Println("   calendar-auth           Authorise calendar access and write the token file")
	fmt.Println()
}

var retained = flag.Bool("retained", false, "publish with the retained flag")

func main() {
	registerServices()
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}
	ps := flag.Args()[1:]

	conf, err := config.Open()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading config:", err)
		os.Exit(1)
	}
	services.Config = conf
	if err := services.SetupLogging(conf.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	command := flag.Args()[0]
	switch command {
	default:
		usage()
		os.Exit(1)
	case "run":
		if len(ps) == 0 {
			usage()
			os.Exit(1)
		}
		services.Launch(ps)
	case "publish":
		if len(ps) != 2 {
			usage()
			os.Exit(1)
		}
		publish(ps[0], ps[1], *retained)
	case "config":
		fmt.Print(conf)
	case "calendar-auth":
		calendarAuth(conf.Dashboard.Calendar)
	}
}

func fatalf(format string, args ...interface{}) {
	log.SetOutput(os.Stderr)
	log.Fatalf(format, args...)
}
