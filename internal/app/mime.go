package app

import (
	"log"
	"mime"
)

// Media served from MEDIA_ROOT may use extensions the host lacks.
func init() {
	ensureMimeType(".webp", "image/webp")
	ensureMimeType(".avif", "image/avif")
	ensureMimeType(".heic", "image/heic")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: failed to register MIME type for %s: %v", ext, err)
	}
}
