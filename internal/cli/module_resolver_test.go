package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleResolver_Resolve(t *testing.T) {
	resolver := NewModuleResolver()

	t.Run("nested package", func(t *testing.T) {
		root := t.TempDir()
		goModContent := `module github.com/example/testapp

go 1.21

require github.com/stretchr/testify v1.11.1
`
		require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte(goModContent), 0644))
		nested := filepath.Join(root, "internal", "people")
		require.NoError(t, os.MkdirAll(nested, 0755))

		info, err := resolver.Resolve(nested)
		require.NoError(t, err)
		assert.Equal(t, "github.com/example/testapp", info.Path)
		assert.Equal(t, root, info.Root)
	})

	t.Run("no module declaration", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("go 1.21\n"), 0644))

		_, err := resolver.Resolve(root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no module declaration")
	})
}
