package shell

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/t0technology/awaitless/object"
)

// ErrUnknownExtension is returned when loading a name nothing registered.
var ErrUnknownExtension = stderrors.New("unknown extension")

// Extension installs behavior into a shell, typically transformers and an
// async predicate. Load must be safe to call on a shell where the extension
// is already loaded.
type Extension interface {
	Name() string
	Load(s *Shell) error
	Unload(s *Shell) error
}

// WithExtensions registers extensions without loading them.
func WithExtensions(exts ...Extension) Option {
	return func(s *Shell) {
		for _, ext := range exts {
			s.registerLocked(ext)
		}
	}
}

// RegisterExtension makes ext loadable by name. Registering another
// extension under the same name replaces it.
func (s *Shell) RegisterExtension(ext Extension) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerLocked(ext)
}

func (s *Shell) registerLocked(ext Extension) {
	s.extensions[ext.Name()] = ext
}

// Extension returns a registered extension.
func (s *Shell) Extension(name string) (Extension, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ext, ok := s.extensions[name]
	return ext, ok
}

// LoadedExtensions returns the names of loaded extensions, sorted.
func (s *Shell) LoadedExtensions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name, loaded := range s.loaded {
		if loaded {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// LoadExtension loads a registered extension. Loading an extension that is
// already loaded loads it again, which leaves the shell as a single load
// would.
func (s *Shell) LoadExtension(name string) error {
	ext, ok := s.Extension(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExtension, name)
	}
	if err := ext.Load(s); err != nil {
		return fmt.Errorf("loading extension %s: %w", name, err)
	}
	s.mu.Lock()
	s.loaded[name] = true
	s.mu.Unlock()
	s.logger.Debug().Str("extension", name).Msg("extension loaded")
	return nil
}

// UnloadExtension unloads an extension. Unloading one that is not loaded
// does nothing.
func (s *Shell) UnloadExtension(name string) error {
	ext, ok := s.Extension(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExtension, name)
	}
	s.mu.Lock()
	loaded := s.loaded[name]
	s.mu.Unlock()
	if !loaded {
		return nil
	}
	if err := ext.Unload(s); err != nil {
		return fmt.Errorf("unloading extension %s: %w", name, err)
	}
	s.mu.Lock()
	delete(s.loaded, name)
	s.mu.Unlock()
	s.logger.Debug().Str("extension", name).Msg("extension unloaded")
	return nil
}

// ReloadExtension unloads and loads an extension.
func (s *Shell) ReloadExtension(name string) error {
	if err := s.UnloadExtension(name); err != nil {
		return err
	}
	return s.LoadExtension(name)
}

// Magic cells start with '%'. They control the shell and are not parsed
// as source.
func isMagic(source string) bool {
	return strings.HasPrefix(strings.TrimSpace(source), "%")
}

func (s *Shell) runMagic(result *ExecutionResult) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(result.Source), "%"))
	if len(fields) == 0 {
		result.ErrorBeforeExec = object.ValueErrorf("empty magic command")
		return
	}
	var run func(string) error
	switch fields[0] {
	case "load_ext":
		run = s.LoadExtension
	case "unload_ext":
		run = s.UnloadExtension
	case "reload_ext":
		run = s.ReloadExtension
	default:
		result.ErrorBeforeExec = object.NameErrorf("unknown magic %%%s", fields[0])
		return
	}
	if len(fields) != 2 {
		result.ErrorBeforeExec = object.ValueErrorf("%%%s takes one extension name", fields[0])
		return
	}
	if err := run(fields[1]); err != nil {
		result.ErrorInExec = err
	}
}
