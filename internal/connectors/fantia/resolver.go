package fantia

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

// SourceName identifies this connector in persisted entities.
const SourceName = "fantia"

// PostURL is the canonical web URL of a record.
func PostURL(postID int64) string {
	return fmt.Sprintf("https://fantia.jp/posts/%d", postID)
}

var (
	postURLRegexp    = regexp.MustCompile(`^https?://fantia\.jp/posts/(\d+)(?:\?[^#]*)?(?:#.*)?$`)
	fanclubURLRegexp = regexp.MustCompile(`^https?://fantia\.jp/fanclubs/(\d+)(?:/[^?#]*)?(?:\?[^#]*)?(?:#.*)?$`)
	bareIDRegexp     = regexp.MustCompile(`^\d+$`)
)

// Resolution is the outcome of resolving an input reference. Exactly
// one of PostID and CreatorID is set.
type Resolution struct {
	// PostID is set when the input names a single record.
	PostID int64

	// CreatorID is set when the input names a creator fanclub, i.e. a
	// search over that creator's feed.
	CreatorID int64
}

// Resolve interprets an input reference: a bare decimal record id, a
// canonical post URL, or a creator fanclub URL. Anything else returns
// domain.ErrUnsupportedInput.
func Resolve(input string) (Resolution, error) {
	if bareIDRegexp.MatchString(input) {
		id, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedInput, input)
		}
		return Resolution{PostID: id}, nil
	}

	if m := postURLRegexp.FindStringSubmatch(input); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedInput, input)
		}
		return Resolution{PostID: id}, nil
	}

	if m := fanclubURLRegexp.FindStringSubmatch(input); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedInput, input)
		}
		return Resolution{CreatorID: id}, nil
	}

	return Resolution{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedInput, input)
}

// originalID formats the local identity of a decomposed content item.
func originalID(postID, contentID int64) string {
	return fmt.Sprintf("%d-%d", postID, contentID)
}

// splitOriginalID parses a post's original id back into the record id
// and, when present, the content item id it decomposed from.
func splitOriginalID(id string) (postID int64, contentID int64, hasContent bool, err error) {
	var p, c int64
	if n, scanErr := fmt.Sscanf(id, "%d-%d", &p, &c); scanErr == nil && n == 2 {
		return p, c, true, nil
	}
	p, err = strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: original id %q", domain.ErrInvalidInput, id)
	}
	return p, 0, false, nil
}
