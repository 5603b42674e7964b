package parser

import "golang.org/x/tools/go/packages"

const (
	// GeneratedFilePrefix marks files written by the generator. They are
	// never scanned for markers.
	GeneratedFilePrefix = "autogen_"

	// loadMode is the go/packages information needed to describe marked methods
	loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
		packages.NeedTypes | packages.NeedTypesInfo
)
