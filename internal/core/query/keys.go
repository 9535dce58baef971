package query

import "github.com/denchenko/pa/internal/core/domain"

const (
	NamespacePosts    = "posts"
	NamespaceComments = "comments"
	NamespaceUsers    = "users"
	NamespaceTags     = "tags"
)

func PostsKey() Key {
	return Key{NamespacePosts}
}

func PostListKey(params domain.ListPostsParams) Key {
	return Key{NamespacePosts, "list", params}
}

func PostSearchKey(q string) Key {
	return Key{NamespacePosts, "search", q}
}

func PostTagKey(tag string) Key {
	return Key{NamespacePosts, "tag", tag}
}

func PostDetailKey(id int) Key {
	return Key{NamespacePosts, "detail", id}
}

func CommentsKey() Key {
	return Key{NamespaceComments}
}

func PostCommentsKey(postID int) Key {
	return Key{NamespaceComments, "post", postID}
}

// UsersKey addresses the full user set; it is also the prefix of every user key.
func UsersKey() Key {
	return Key{NamespaceUsers}
}

func UserKey(id int) Key {
	return Key{NamespaceUsers, "detail", id}
}

func TagsKey() Key {
	return Key{NamespaceTags}
}
