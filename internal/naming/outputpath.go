package naming

import "path/filepath"

// OutputPath builds the output file path for a source stem. ext is the
// target extension without dot (e.g. "png", "gif", "mp4").
//
//	<destDir>/<stem>.<ext>
func OutputPath(destDir, stem, ext string) string {
	return filepath.Join(destDir, stem+"."+ext)
}
