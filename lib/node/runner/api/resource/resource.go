package resource

import (
	"github.com/nvellon/hal"
)

// Resource is anything the api renders as a hal document.
type Resource interface {
	LinkSelf() string
	Resource() *hal.Resource
	GetMap() hal.Entry
}

// ResourceList embeds its items under `records`. `next` is linked only when
// another page can follow.
type ResourceList struct {
	items    []Resource
	selfLink string
	nextLink string
}

func NewResourceList(items []Resource, selfLink, nextLink string) *ResourceList {
	return &ResourceList{items: items, selfLink: selfLink, nextLink: nextLink}
}

func (l ResourceList) Len() int {
	return len(l.items)
}

func (l ResourceList) LinkSelf() string {
	return l.selfLink
}

func (l ResourceList) GetMap() hal.Entry {
	return hal.Entry{"count": len(l.items)}
}

func (l ResourceList) Resource() *hal.Resource {
	r := hal.NewResource(l, l.LinkSelf())
	if len(l.nextLink) > 0 {
		r.AddLink("next", hal.NewLink(l.nextLink))
	}

	embedded := make(hal.ResourceCollection, 0, len(l.items))
	for _, item := range l.items {
		embedded = append(embedded, item.Resource())
	}
	r.EmbedCollection("records", embedded)

	return r
}
