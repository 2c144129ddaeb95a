package services

import "hugo-micropub/pkg/models"

// postTypeVocab is checked in order, per the indieweb post-type-discovery
// algorithm. A reply that also carries photos is a reply, not a photo post.
var postTypeVocab = []string{
	"rsvp",
	"in-reply-to",
	"repost-of",
	"like-of",
	"listen-of",
	"watch-of",
	"bookmark-of",
	"ate",
	"drank",
	"photo",
}

// DiscoverPostType classifies a property map into a post type. Articles are
// anything left over with a title; notes are everything else.
func DiscoverPostType(props models.PropertyMap) string {
	for _, t := range postTypeVocab {
		if _, ok := props[t]; ok {
			return t
		}
	}
	// Micropub calls the title "name"; by the time we classify it may
	// already be stored as "title".
	if _, ok := props["name"]; ok {
		return "article"
	}
	if _, ok := props["title"]; ok {
		return "article"
	}
	return "note"
}
