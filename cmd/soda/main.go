// soda reads a SOAP envelope carrying a dcop:Call, validates it against the
// shared key in ~/.kxmlrpcd and hands the decoded call to DCOP.
//
// There is no DCOP transport in this module, so the call is passed to the
// dry-run dispatcher, which decodes and logs the arguments.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/spf13/pflag"

	"github.com/Macmod/go-soda/config"
	"github.com/Macmod/go-soda/dcop"
	"github.com/Macmod/go-soda/soap"
)

var logger = loggo.GetLogger("soda.cmd")

// exitError carries a non-zero status without an extra message; whatever
// needed saying has already been printed.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, dcop.DryRun{})
	if err == nil {
		return
	}
	if code, ok := err.(exitError); ok {
		os.Exit(int(code))
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, dispatcher dcop.Dispatcher) error {
	var (
		configPath           string
		keyFile              string
		logging              string
		allowUnauthenticated bool
		strictNumbers        bool
		faultXML             bool
		example              bool
	)

	flagSet := pflag.NewFlagSet("soda", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "TOML configuration file")
	flagSet.StringVar(&keyFile, "key-file", "", "shared key file (default "+config.DefaultKeyFile+")")
	flagSet.StringVar(&logging, "log", "", "loggo configuration, e.g. '<root>=DEBUG'")
	flagSet.BoolVar(&allowUnauthenticated, "allow-unauthenticated", false, "accept envelopes without a dcop:Authorization header")
	flagSet.BoolVar(&strictNumbers, "strict-numbers", false, "reject numeric parameters that do not parse")
	flagSet.BoolVar(&faultXML, "fault-xml", false, "print a SOAP Fault envelope on stdout when the request is rejected")
	flagSet.BoolVar(&example, "example", false, "print an example request envelope and exit")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: soda [flags] envelope.xml\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return exitError(2)
	}

	if example {
		fmt.Fprintln(stdout, soap.PrettyXML(soap.BuildCallRequest(soap.CallRequest{
			Key:         "your key here",
			Application: "kmix",
			Object:      "Mixer0",
			Method:      "setMasterVolume",
			Params: []soap.CallParam{
				{Type: "int", Value: "0"},
				{Type: "int", Value: "80"},
			},
		})))
		return nil
	}

	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return exitError(2)
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return errors.Trace(err)
		}
	}
	if keyFile != "" {
		cfg.KeyFile = keyFile
	}
	if logging != "" {
		cfg.Logging = logging
	}
	cfg.AllowUnauthenticated = cfg.AllowUnauthenticated || allowUnauthenticated
	cfg.StrictNumbers = cfg.StrictNumbers || strictNumbers

	if err := loggo.ConfigureLoggers(cfg.Logging); err != nil {
		return errors.Annotate(err, "configuring logging")
	}

	key, err := cfg.LoadKey()
	if err != nil {
		return errors.Annotate(err, "loading key")
	}

	path := flagSet.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		return errors.Annotatef(err, "can't read %s", path)
	}
	defer f.Close()

	call, err := soap.ParseCall(f, key, cfg.SessionOptions()...)
	if err != nil {
		fault, ok := err.(*soap.Fault)
		if !ok {
			return errors.Trace(err)
		}
		reportFault(stdout, stderr, fault, faultXML)
		return exitError(1)
	}

	url := dcop.URL(call.Application, call.Object, call.Signature())
	fmt.Fprintln(stdout, url)

	reply, err := dispatcher.Call(ctx, call.Application, call.Object, call.Signature(), call.Data)
	if err != nil {
		return errors.Annotate(err, "DCOP call failed")
	}
	logger.Infof("DCOP call succeeded: %s returned %s (%d bytes)", url, reply.Type, len(reply.Data))
	return nil
}

func reportFault(stdout, stderr io.Writer, f *soap.Fault, asXML bool) {
	fmt.Fprintln(stderr, "Parsing failed")
	fmt.Fprintf(stderr, "Fault code    : %s\n", f.Code)
	fmt.Fprintf(stderr, "Fault string  : %s\n", f.String)
	fmt.Fprintf(stderr, "Fault detail  : %s\n", f.Detail)
	if asXML {
		fmt.Fprintln(stdout, soap.PrettyXML(soap.BuildFaultResponse(f)))
	}
}
