package runtime

import (
	"path/filepath"
	"strings"
)

// mimeTypes maps a lowercased file extension (including the leading dot)
// to its MIME type, the same table mediabag.rs's guess_mime_type encodes.
var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",

	".pdf":      "application/pdf",
	".html":     "text/html",
	".htm":      "text/html",
	".css":      "text/css",
	".js":       "application/javascript",
	".json":     "application/json",
	".xml":      "application/xml",
	".txt":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".tex":      "application/x-tex",
	".csv":      "text/csv",

	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".eot":   "application/vnd.ms-fontobject",

	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",

	".mp4":  "video/mp4",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",

	".zip": "application/zip",
	".tar": "application/x-tar",
	".gz":  "application/gzip",
}

// GuessMimeType infers a MIME type from a file path's extension,
// defaulting to "application/octet-stream" for anything unrecognized
// (mediabag.rs's guess_mime_type, used both for HTTP fetch fallback and
// for mediabag.insert's default argument).
func GuessMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
