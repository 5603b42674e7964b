// Command buildergen generates fluent builder types for methods marked with
// //builder::property.
//
// Typical use is a go:generate directive next to the marked type:
//
//	//go:generate go run github.com/toyz/buildergen/cmd/buildergen
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
