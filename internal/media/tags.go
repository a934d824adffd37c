package media

import (
	id3v2 "github.com/bogem/id3v2/v2"
)

// EmbedID3Tags writes title/artist metadata into an mp3 artifact before it
// is delivered. Tagging is best-effort; callers log and move on when it
// fails.
func EmbedID3Tags(path, title, artist string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if title != "" {
		tag.SetTitle(title)
	}
	if artist != "" {
		tag.SetArtist(artist)
	}
	return tag.Save()
}
