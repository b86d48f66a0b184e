package eval

import (
	"path/filepath"
	"strings"
)

// BuiltInModifier computes the value of one of the fixed built-in metadata
// names for an item whose evaluated-include is path, scoped to projectDir
// and definingProject. fs supplies the filesystem
// probes for the three timestamp names; it may be nil if those three names
// are never requested (e.g. in pure string-manipulation tests).
//
// ok is false when name isn't one of the built-ins BuiltInMetadataNames
// lists.
func BuiltInModifier(fs FilesystemCollaborator, path, projectDir, definingProject string, name string) (value string, ok bool) {
	if !BuiltInMetadataNames[name] {
		return "", false
	}

	full := path
	if !filepath.IsAbs(full) && projectDir != "" {
		full = filepath.Join(projectDir, full)
	}
	full = filepath.Clean(full)

	switch name {
	case "FullPath":
		return full, true
	case "RootDir":
		return filepath.VolumeName(full) + string(filepath.Separator), true
	case "Filename":
		base := filepath.Base(full)
		return strings.TrimSuffix(base, filepath.Ext(base)), true
	case "Extension":
		return filepath.Ext(full), true
	case "Directory":
		dir := filepath.Dir(full)
		return ensureTrailingSeparator(stripVolumeAndRoot(dir)), true
	case "RelativeDir":
		dir := filepath.Dir(path)
		if dir == "." {
			return "", true
		}
		return ensureTrailingSeparator(dir), true
	case "RecursiveDir":
		// Populated by the glob expander when a ** segment matched; outside
		// of that context (a literal Include) it is empty.
		return "", true
	case "Identity":
		return path, true
	case "DefiningProjectFullPath":
		return definingProject, true
	case "DefiningProjectDirectory":
		return ensureTrailingSeparator(filepath.Dir(definingProject)), true
	case "DefiningProjectName":
		base := filepath.Base(definingProject)
		return strings.TrimSuffix(base, filepath.Ext(base)), true
	case "DefiningProjectExtension":
		return filepath.Ext(definingProject), true
	case "ModifiedTime":
		if fs == nil {
			return "", true
		}
		v, _ := fs.ModifiedTime(full)
		return v, true
	case "CreatedTime":
		if fs == nil {
			return "", true
		}
		v, _ := fs.CreatedTime(full)
		return v, true
	case "AccessedTime":
		if fs == nil {
			return "", true
		}
		v, _ := fs.AccessedTime(full)
		return v, true
	default:
		return "", false
	}
}

func ensureTrailingSeparator(p string) string {
	if p == "" {
		return p
	}
	if strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}

func stripVolumeAndRoot(p string) string {
	return p[len(filepath.VolumeName(p)):]
}
