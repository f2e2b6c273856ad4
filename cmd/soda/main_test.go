package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/Macmod/go-soda/dcop"
	"github.com/Macmod/go-soda/soap"
)

type recordingDispatcher struct {
	calls []string
	data  [][]byte
}

func (r *recordingDispatcher) Call(ctx context.Context, app, object, signature string, data []byte) (*dcop.Reply, error) {
	r.calls = append(r.calls, dcop.URL(app, object, signature))
	r.data = append(r.data, data)
	return &dcop.Reply{Type: "void"}, nil
}

func setup(c *qt.C, envelope string) (keyPath, envPath string) {
	dir := c.TempDir()
	keyPath = filepath.Join(dir, "key")
	envPath = filepath.Join(dir, "envelope.xml")
	c.Assert(os.WriteFile(keyPath, []byte("s3cret"), 0o600), qt.IsNil)
	c.Assert(os.WriteFile(envPath, []byte(envelope), 0o600), qt.IsNil)
	return keyPath, envPath
}

func TestRunDispatchesValidCall(t *testing.T) {
	c := qt.New(t)

	keyPath, envPath := setup(c, soap.BuildCallRequest(soap.CallRequest{
		Key:         "s3cret",
		Application: "kmix",
		Object:      "Mixer0",
		Method:      "setMute",
		Params:      []soap.CallParam{{Type: "boolean", Value: "1"}},
	}))

	var stdout, stderr bytes.Buffer
	d := &recordingDispatcher{}
	err := run(context.Background(), []string{"--key-file", keyPath, envPath}, &stdout, &stderr, d)
	c.Assert(err, qt.IsNil)
	c.Assert(stdout.String(), qt.Equals, "dcop:/kmix/Mixer0/setMute(bool)\n")
	c.Assert(d.calls, qt.DeepEquals, []string{"dcop:/kmix/Mixer0/setMute(bool)"})
	c.Assert(d.data, qt.DeepEquals, [][]byte{{1}})
}

func TestRunReportsFault(t *testing.T) {
	c := qt.New(t)

	keyPath, envPath := setup(c, soap.BuildCallRequest(soap.CallRequest{
		Key:         "wrong",
		Application: "kmix",
		Object:      "Mixer0",
		Method:      "setMute",
	}))

	var stdout, stderr bytes.Buffer
	d := &recordingDispatcher{}
	err := run(context.Background(), []string{"--fault-xml", "--key-file", keyPath, envPath}, &stdout, &stderr, d)
	c.Assert(err, qt.Equals, exitError(1))
	c.Assert(d.calls, qt.HasLen, 0)
	c.Assert(stderr.String(), qt.Contains, "Fault code    : Client\n")
	c.Assert(stderr.String(), qt.Contains, "Fault string  : Bad authorization key\n")

	c.Assert(stdout.String(), qt.Contains, "?>\n<SOAP-ENV:Envelope ")
	c.Assert(stdout.String(), qt.Contains, "\n  <SOAP-ENV:Body>\n    <SOAP-ENV:Fault>\n")

	f, err := soap.ParseFaultResponse(stdout.String())
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.DeepEquals, &soap.Fault{Code: soap.Client, String: "Bad authorization key"})
}

func TestRunConfigPolicy(t *testing.T) {
	c := qt.New(t)

	keyPath, envPath := setup(c, soap.BuildCallRequest(soap.CallRequest{
		Application: "kded",
		Object:      "kded",
		Method:      "loadedModules",
	}))
	cfgPath := filepath.Join(filepath.Dir(keyPath), "soda.toml")
	c.Assert(os.WriteFile(cfgPath, []byte("allow_unauthenticated = true\nkey_file = \""+keyPath+"\"\n"), 0o600), qt.IsNil)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{envPath}, &stdout, &stderr, &recordingDispatcher{})
	c.Assert(err, qt.Not(qt.IsNil))

	stdout.Reset()
	err = run(context.Background(), []string{"--config", cfgPath, envPath}, &stdout, &stderr, &recordingDispatcher{})
	c.Assert(err, qt.IsNil)
	c.Assert(stdout.String(), qt.Equals, "dcop:/kded/kded/loadedModules()\n")

	stdout.Reset()
	err = run(context.Background(), []string{"--allow-unauthenticated", "--key-file", keyPath, envPath}, &stdout, &stderr, &recordingDispatcher{})
	c.Assert(err, qt.IsNil)
}

func TestRunMalformedXML(t *testing.T) {
	c := qt.New(t)

	keyPath, envPath := setup(c, "<SOAP-ENV:Envelope><oops></SOAP-ENV:Envelope>")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--key-file", keyPath, envPath}, &stdout, &stderr, &recordingDispatcher{})
	c.Assert(err, qt.Equals, exitError(1))
	c.Assert(stderr.String(), qt.Contains, "Fault string  : Malformed XML\n")
}

func TestRunUsage(t *testing.T) {
	c := qt.New(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), nil, &stdout, &stderr, &recordingDispatcher{})
	c.Assert(err, qt.Equals, exitError(2))
	c.Assert(strings.HasPrefix(stderr.String(), "Usage: soda"), qt.IsTrue)

	err = run(context.Background(), []string{"--no-such-flag"}, &stdout, &stderr, &recordingDispatcher{})
	c.Assert(err, qt.Equals, exitError(2))
}

func TestRunExample(t *testing.T) {
	c := qt.New(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--example"}, &stdout, &stderr, &recordingDispatcher{})
	c.Assert(err, qt.IsNil)
	c.Assert(stdout.String(), qt.Contains, "\n  <SOAP-ENV:Header>\n    <dcop:Authorization ")

	call, err := soap.ParseCall(strings.NewReader(stdout.String()), []byte("your key here"))
	c.Assert(err, qt.IsNil)
	c.Assert(call.Signature(), qt.Equals, "setMasterVolume(int, int)")
}
