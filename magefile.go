//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	wireDir = "./internal/infra/wire"
	docsDir = "cmd/server/docs"
)

// Default target when running mage without arguments.
var Default = Build

// Build builds the server binary.
func Build() error {
	mg.Deps(Generate)
	fmt.Println("Building server...")
	return sh.Run("go", "build", "-o", "bin/orgauth", "./cmd/server")
}

// Generate runs all code generation.
func Generate() error {
	mg.Deps(Wire, Swagger)
	return nil
}

// Wire regenerates the dependency injection code.
func Wire() error {
	fmt.Printf("Running wire in %s...\n", wireDir)
	return sh.Run("wire", wireDir)
}

// Swagger regenerates the OpenAPI docs served on /swagger.
func Swagger() error {
	fmt.Println("Generating swagger docs...")
	return sh.Run("swag", "init",
		"--generalInfo", "docs.go",
		"--dir", "cmd/server,internal/adapter/inbound/gin,internal/domain,internal/utils/errors",
		"--output", docsDir,
		"--outputTypes", "go",
	)
}

// Test runs all tests with the race detector.
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-race", "./...")
}

// TestCover runs tests with coverage.
func TestCover() error {
	fmt.Println("Running tests with coverage...")
	return sh.Run("go", "test", "-cover", "-coverprofile=coverage.out", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	fmt.Println("Running linter...")
	return sh.Run("golangci-lint", "run", "./...")
}

// Vet runs go vet.
func Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	fmt.Println("Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	_ = os.Remove("coverage.out")
	return nil
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println("Running go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// All runs tidy, generate, vet, lint, test, and build.
func All() error {
	mg.SerialDeps(Tidy, Generate, Vet, Lint, Test, Build)
	return nil
}

// Run builds and starts the server on the in-memory store with dev login
// enabled. Settings already present in the environment win.
func Run() error {
	mg.Deps(Build)

	env := map[string]string{}
	defaults := map[string]string{
		"ORGAUTH_DATABASE_DRIVER": "memory",
		"ORGAUTH_AUTH_DEV_LOGIN":  "true",
		"ORGAUTH_JWT_SECRET":      "dev-only-secret",
		"ORGAUTH_LOG_FORMAT":      "text",
	}
	for k, v := range defaults {
		if os.Getenv(k) == "" {
			env[k] = v
		}
	}

	fmt.Println("Starting server...")
	_, err := sh.Exec(env, os.Stdout, os.Stderr, "./bin/orgauth")
	return err
}

// CI runs the CI pipeline (tidy, generate, vet, test with coverage).
func CI() error {
	mg.SerialDeps(Tidy, Generate, Vet, TestCover)
	return nil
}

// Install installs development tools.
func Install() error {
	fmt.Println("Installing development tools...")

	tools := []string{
		"github.com/google/wire/cmd/wire@latest",
		"github.com/swaggo/swag/cmd/swag@latest",
		"github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	}

	for _, tool := range tools {
		fmt.Printf("  Installing %s\n", tool)
		if err := sh.Run("go", "install", tool); err != nil {
			return fmt.Errorf("installing %s: %w", tool, err)
		}
	}

	return nil
}
