package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestSetAllConfig(t *testing.T) {
	f, err := ioutil.TempFile("", "upscale.toml")
	if err != nil {
		t.Fatalf("getting temp file: %v", err)
	}
	defer os.Remove(f.Name())
	_, err = f.WriteString("factor = 3.5\nrun-id = \"from-config\"\nsample-sizes = [\"1.0\", \"0.25\"]\n")
	if err != nil {
		t.Fatalf("writing config: %v", err)
	}
	f.Close()

	os.Setenv("UPSCALE_RUN_ID", "from-env")
	defer os.Unsetenv("UPSCALE_RUN_ID")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	factor := flags.Float64("factor", 10, "")
	runID := flags.String("run-id", "default", "")
	sizes := flags.StringSlice("sample-sizes", []string{"1.0"}, "")
	single := flags.Bool("single-agent", false, "")
	flags.String("config", "", "")
	if err := flags.Parse([]string{"--config", f.Name(), "--single-agent"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	if err := setAllConfig(viper.New(), flags, "UPSCALE"); err != nil {
		t.Fatalf("setting config: %v", err)
	}
	if *factor != 3.5 {
		t.Errorf("factor from config file: %v", *factor)
	}
	if *runID != "from-env" {
		t.Errorf("env should override the config file, got run id %s", *runID)
	}
	if len(*sizes) != 2 || (*sizes)[1] != "0.25" {
		t.Errorf("sample sizes from config file: %v", *sizes)
	}
	if !*single {
		t.Error("flag value lost")
	}
}

func TestRootCommand(t *testing.T) {
	stderr := &bytes.Buffer{}
	rc := NewRootCommand(os.Stdin, os.Stdout, stderr)
	for _, name := range []string{"upscale", "scale", "kafka", "publish", "network", "facilities"} {
		c, _, err := rc.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Errorf("sub-command %s not registered: %v", name, err)
		}
	}
	if f := UpscaleMain; f == nil || f.Factor != 10 {
		t.Errorf("unexpected upscale defaults: %+v", f)
	}
}

func TestSetAllConfigNumericSampleSizes(t *testing.T) {
	f, err := ioutil.TempFile("", "upscale.toml")
	if err != nil {
		t.Fatalf("getting temp file: %v", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString("sample-sizes = [1.0, 0.1]\n"); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	f.Close()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	sizes := flags.StringSlice("sample-sizes", []string{"1.0"}, "")
	flags.String("config", "", "")
	if err := flags.Parse([]string{"--config", f.Name()}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	if err := setAllConfig(viper.New(), flags, EnvPrefix); err != nil {
		t.Fatalf("setting config: %v", err)
	}
	if len(*sizes) != 2 || (*sizes)[0] != "1" || (*sizes)[1] != "0.1" {
		t.Errorf("sample sizes from config file: %v", *sizes)
	}
}

func TestSetAllConfigBadValue(t *testing.T) {
	os.Setenv("UPSCALE_FACTOR", "lots")
	defer os.Unsetenv("UPSCALE_FACTOR")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("factor", 10, "")
	flags.String("config", "", "")
	err := setAllConfig(viper.New(), flags, EnvPrefix)
	if err == nil || !strings.Contains(err.Error(), "setting factor") {
		t.Fatalf("expected an error naming the flag, got %v", err)
	}
}

func TestRootCommandOrder(t *testing.T) {
	rc := NewRootCommand(os.Stdin, os.Stdout, &bytes.Buffer{})
	var names []string
	for _, c := range rc.Commands() {
		names = append(names, c.Name())
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("sub-commands out of order: %v", names)
	}
}
