package main

import (
	"flag"
	"log"
)

func parseInitFlags(args []string) (configFile string, force bool) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	fs.StringVar(&configFile, "config", "", "Path to config file")
	fs.BoolVar(&force, "force", false, "Force overwrite existing config file")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}
	return configFile, force
}

func parseStartFlags(args []string) (configFile string, fs *flag.FlagSet) {
	fs = flag.NewFlagSet("start", flag.ExitOnError)
	fs.StringVar(&configFile, "config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}
	return configFile, fs
}

func parseTokenFlags(args []string) (admin bool, configFile string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	fs.BoolVar(&admin, "admin", false, "Mint a token with admin privileges")
	fs.StringVar(&configFile, "config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}
	return admin, configFile
}
