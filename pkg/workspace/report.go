package workspace

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
)

// RunTarget picks the executable to launch after a build. With a name, the
// package of that name is selected; without one the workspace must contain
// exactly one successfully built executable. Packages that failed to build
// are never selected.
func (r *Report) RunTarget(name string) (Result, error) {
	var candidates []Result
	for _, item := range r.Results {
		if item.Builder == nil || item.Builder.Package().Kind != manifest.Executable {
			continue
		}

		if name != "" && item.Builder.Package().Name != name {
			continue
		}

		candidates = append(candidates, item)
	}

	if name != "" {
		if len(candidates) == 0 {
			return Result{}, eris.Errorf("no executable package named %s in this workspace", name)
		}

		if !candidates[0].OK() {
			return Result{}, eris.Wrapf(candidates[0].Err, "package %s failed to build", name)
		}

		return candidates[0], nil
	}

	var built []Result
	for _, item := range candidates {
		if item.OK() {
			built = append(built, item)
		}
	}

	switch len(built) {
	case 0:
		return Result{}, eris.New("no executable package was built successfully")
	case 1:
		return built[0], nil
	}

	names := make([]string, len(built))
	for idx, item := range built {
		names[idx] = item.Builder.Package().Name
	}
	sort.Strings(names)

	return Result{}, eris.Errorf("multiple executable packages found (%s), pick one with --package", strings.Join(names, ", "))
}

type reportEntry struct {
	Path    string `yaml:"path"`
	Package string `yaml:"package,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	Output  string `yaml:"output,omitempty"`
	Status  string `yaml:"status"`
	Error   string `yaml:"error,omitempty"`
}

type reportFile struct {
	Root      string        `yaml:"root"`
	Succeeded int           `yaml:"succeeded"`
	Failed    int           `yaml:"failed"`
	Packages  []reportEntry `yaml:"packages"`
}

// MarshalYAML renders the report as a YAML document
func (r *Report) MarshalYAML() (interface{}, error) {
	doc := reportFile{
		Root:      r.Root,
		Succeeded: len(r.Succeeded()),
		Failed:    len(r.Failed()),
		Packages:  make([]reportEntry, 0, len(r.Results)),
	}

	for _, item := range r.Results {
		entry := reportEntry{
			Path:   item.Path,
			Status: "ok",
		}

		if item.Builder != nil {
			pkg := item.Builder.Package()
			entry.Package = pkg.Identity()
			entry.Kind = pkg.Kind.String()
			entry.Output = item.Builder.OutputPath()
		}

		if item.Err != nil {
			entry.Status = "failed"
			entry.Error = item.Err.Error()
		}

		doc.Packages = append(doc.Packages, entry)
	}

	return doc, nil
}

// WriteYAML stores the report at path
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "failed to encode build report")
	}

	err = os.WriteFile(path, data, 0o660)
	if err != nil {
		return eris.Wrapf(err, "failed to write build report %s", path)
	}

	return nil
}
