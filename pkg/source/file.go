package source

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
)

// File reads <Dir>/<project>.json.
type File struct {
	Dir string
}

// NewFile returns a file source rooted at dir.
func NewFile(dir string) *File { return &File{Dir: dir} }

func (*File) Name() string { return "file" }

// Path returns the file a project is read from.
func (f *File) Path(project string) string {
	return filepath.Join(f.Dir, project+".json")
}

func (f *File) Load(ctx context.Context, project string) (graph.Dataset, error) {
	return observe(ctx, f.Name(), project, func() (graph.Dataset, error) {
		return LoadFile(f.Path(project))
	})
}

// LoadFile reads a dataset from an explicit path.
func LoadFile(path string) (graph.Dataset, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return graph.Dataset{}, errors.Wrap(errors.ErrCodeNotFound, err, "dataset %s not found", path)
	}
	if err != nil {
		return graph.Dataset{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	ds, err := graph.UnmarshalDataset(data)
	if err != nil {
		return graph.Dataset{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	return ds, nil
}

var _ Source = (*File)(nil)
