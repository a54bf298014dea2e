package grading

import "github.com/samaralitalim/answersheet/internal/models"

// Profile holds the per-mode differences of the upload request
type Profile struct {
	Author     string
	UploadPath string
	Accept     string

	// FixedFilename and FixedContentType replace the picked file's own values when set
	FixedFilename    string
	FixedContentType string
}

var profiles = map[models.Mode]Profile{
	models.ModeCamera: {
		Author:           "1",
		UploadPath:       "/class_request_javob.asp",
		Accept:           "*/*",
		FixedFilename:    "javob_file.jpg",
		FixedContentType: "image/jpeg",
	},
	models.ModeGallery: {
		Author:     "0",
		UploadPath: "/class_request_javob_mobil.asp",
		Accept:     "application/json",
	},
}

// ProfileFor returns the upload profile for mode, falling back to camera
func ProfileFor(mode models.Mode) Profile {
	if p, ok := profiles[mode]; ok {
		return p
	}
	return profiles[models.ModeCamera]
}
