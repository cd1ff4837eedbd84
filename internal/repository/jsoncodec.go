package repository

import (
	"encoding/json"
	"fmt"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// wirePermissions mirrors domain.Permissions with slices in place of sets so
// it round-trips through JSON deterministically.
type wirePermissions struct {
	Environment     []string `json:"environment,omitempty"`
	Network         []string `json:"network,omitempty"`
	FilesystemRead  []string `json:"filesystemRead,omitempty"`
	FilesystemWrite []string `json:"filesystemWrite,omitempty"`
	ExecCommand     []string `json:"execCommand,omitempty"`
	ExecExecutable  []string `json:"execExecutable,omitempty"`
	System          []string `json:"system,omitempty"`
	Clipboard       []string `json:"clipboard,omitempty"`
	MainSearchBar   []string `json:"mainSearchBar,omitempty"`
}

func setToSlice[T ~string](m map[T]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	return out
}

func sliceToSet[T ~string](s []string) map[T]struct{} {
	out := make(map[T]struct{}, len(s))
	for _, v := range s {
		out[T(v)] = struct{}{}
	}
	return out
}

func marshalPermissions(p domain.Permissions) (string, error) {
	w := wirePermissions{
		Environment:     setToSlice(p.Environment),
		Network:         setToSlice(p.Network),
		FilesystemRead:  setToSlice(p.FilesystemRead),
		FilesystemWrite: setToSlice(p.FilesystemWrite),
		ExecCommand:     setToSlice(p.ExecCommand),
		ExecExecutable:  setToSlice(p.ExecExecutable),
		System:          setToSlice(p.System),
		Clipboard:       setToSlice(p.Clipboard),
		MainSearchBar:   setToSlice(p.MainSearchBar),
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("marshal permissions: %w", err)
	}
	return string(b), nil
}

func unmarshalPermissions(raw string) (domain.Permissions, error) {
	var w wirePermissions
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return domain.Permissions{}, fmt.Errorf("unmarshal permissions: %w", err)
	}
	return domain.Permissions{
		Environment:     sliceToSet[string](w.Environment),
		Network:         sliceToSet[string](w.Network),
		FilesystemRead:  sliceToSet[string](w.FilesystemRead),
		FilesystemWrite: sliceToSet[string](w.FilesystemWrite),
		ExecCommand:     sliceToSet[string](w.ExecCommand),
		ExecExecutable:  sliceToSet[string](w.ExecExecutable),
		System:          sliceToSet[string](w.System),
		Clipboard:       sliceToSet[domain.ClipboardPermission](w.Clipboard),
		MainSearchBar:   sliceToSet[domain.MainSearchBarPermission](w.MainSearchBar),
	}, nil
}

func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return string(b), nil
}

func unmarshalJSON(raw string, fallback string, v interface{}) error {
	if raw == "" {
		raw = fallback
	}
	return json.Unmarshal([]byte(raw), v)
}
