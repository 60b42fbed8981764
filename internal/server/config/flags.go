package config

import (
	"flag"
	"os"
	"time"

	"github.com/hlf20010508/transfery/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-n string   login username
//	-w string   login password
//	-i int      items per page
//	-t int      short certificate validity, minutes
//	-r int      long (rememberMe) certificate validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-n", "-w", "-i", "-t", "-r", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Username, "n", config.Username, "login username")
	fs.StringVar(&config.Password, "w", config.Password, "login password")
	fs.IntVar(&config.ItemsPerPage, "i", config.ItemsPerPage, "items per page")

	certShortTTL := fs.Int("t", int(config.CertShortTTL.Minutes()), "short certificate validity (in minutes)")
	certLongTTL := fs.Int("r", int(config.CertLongTTL.Minutes()), "long certificate validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.CertShortTTL = time.Duration(*certShortTTL) * time.Minute
	config.CertLongTTL = time.Duration(*certLongTTL) * time.Minute
}
