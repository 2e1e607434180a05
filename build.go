//go:build ignore

// build.go - bondpulse build driver
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, web, normalize, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const versionPkg = "bondpulse/pkg/contracts"

var (
	distDir = "dist"

	// key = directory under cmd/, value = binary name
	executables = map[string]string{
		"web":       "bondpulse",
		"normalize": "normalize",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	start := time.Now()

	var err error
	switch *target {
	case "all":
		for name := range executables {
			if err = buildExecutable(name, runtime.GOOS, runtime.GOARCH, *verbose); err != nil {
				break
			}
		}
	case "web", "normalize":
		err = buildExecutable(*target, runtime.GOOS, runtime.GOARCH, *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = os.RemoveAll(distDir)
	case "release":
		err = buildRelease(*verbose)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(start).Round(time.Millisecond)))
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func ldflags() string {
	commit := "unknown"
	if out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		commit = strings.TrimSpace(string(out))
	} else {
		printWarning("git commit unavailable, stamping 'unknown'")
	}
	return fmt.Sprintf("-s -w -X %s.BuildTime=%s -X %s.GitCommit=%s",
		versionPkg, time.Now().UTC().Format(time.RFC3339), versionPkg, commit)
}

func buildExecutable(name, goos, goarch string, verbose bool) error {
	binary, ok := executables[name]
	if !ok {
		return fmt.Errorf("unknown executable: %s", name)
	}
	if goos == "windows" {
		binary += ".exe"
	}

	out := filepath.Join(distDir, binary)
	if goos != runtime.GOOS || goarch != runtime.GOARCH {
		out = filepath.Join(distDir, goos+"_"+goarch, binary)
	}
	printInfo(fmt.Sprintf("Building %s -> %s", name, out))

	args := []string{"build"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "-trimpath", "-ldflags", ldflags(), "-o", out, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build %s (%s/%s): %w", name, goos, goarch, err)
	}
	return nil
}

func runTests(verbose bool) error {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	return nil
}

func buildRelease(verbose bool) error {
	if err := runTests(verbose); err != nil {
		return err
	}
	platforms := [][2]string{
		{"linux", "amd64"},
		{"linux", "arm64"},
		{"darwin", "arm64"},
		{"windows", "amd64"},
	}
	for _, p := range platforms {
		for name := range executables {
			if err := buildExecutable(name, p[0], p[1], verbose); err != nil {
				return err
			}
		}
	}
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=TARGET [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all        Build every binary for the host platform (default)")
	fmt.Println("  web        Build the chart server")
	fmt.Println("  normalize  Build the normalize CLI")
	fmt.Println("  test       Run go test -race ./...")
	fmt.Println("  clean      Remove the dist directory")
	fmt.Println("  release    Test, then cross-compile every binary")
}
