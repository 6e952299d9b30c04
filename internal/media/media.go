package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const MaxAvatarSize = 5 * 1024 * 1024

var (
	ErrEmpty          = errors.New("file is empty")
	ErrAvatarType     = errors.New("avatar must be a PNG or JPEG image")
	ErrAvatarTooLarge = errors.New("avatar must not exceed 5 MB")
	ErrDataURL        = errors.New("malformed data URL")
)

func CheckAvatar(data []byte) error {
	if len(data) == 0 {
		return ErrEmpty
	}

	if len(data) > MaxAvatarSize {
		return ErrAvatarTooLarge
	}

	mime := mimetype.Detect(data)
	if !mime.Is("image/png") && !mime.Is("image/jpeg") {
		return ErrAvatarType
	}

	return nil
}

// DataURL embeds data as a base64 data URL typed after its detected content.
func DataURL(data []byte) string {
	mime := strings.ReplaceAll(mimetype.Detect(data).String(), " ", "")

	var b strings.Builder
	b.Grow(len(mime) + base64.StdEncoding.EncodedLen(len(data)) + 13)
	b.WriteString("data:")
	b.WriteString(mime)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))

	return b.String()
}

// ParseDataURL decodes a base64 data URL produced by DataURL.
func ParseDataURL(url string) ([]byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return nil, ErrDataURL
	}

	_, encoded, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, ErrDataURL
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataURL, err)
	}

	return data, nil
}

func IsMedia(err error) bool {
	return errors.Is(err, ErrEmpty) || errors.Is(err, ErrAvatarType) || errors.Is(err, ErrAvatarTooLarge)
}
