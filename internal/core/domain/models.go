package domain

// Post is a blog-like post as served by the remote API.
type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UserID    int       `json:"userId"`
	Tags      []string  `json:"tags"`
	Reactions Reactions `json:"reactions"`
	Views     int       `json:"views"`
}

type Reactions struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Author is the denormalized user info attached to a post at view time.
type Author struct {
	Username string `json:"username"`
	Image    string `json:"image"`
}

// PostWithAuthor is a post joined with its author. It is never stored in the cache.
type PostWithAuthor struct {
	Post
	Author *Author `json:"author,omitempty"`
}

type CommentUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type Comment struct {
	ID     int         `json:"id"`
	Body   string      `json:"body"`
	PostID int         `json:"postId"`
	Likes  int         `json:"likes"`
	User   CommentUser `json:"user"`
}

type User struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email,omitempty"`
	FirstName string  `json:"firstName,omitempty"`
	LastName  string  `json:"lastName,omitempty"`
	Age       int     `json:"age,omitempty"`
	Image     string  `json:"image,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Address   Address `json:"address"`
	Company   Company `json:"company"`
}

type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}

type Company struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Department string `json:"department"`
}

// FullName returns the first and last name joined by a space.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Tag is a post tag. The API serves either bare strings or {slug, name, url} objects.
type Tag struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// PostDetail is a post together with its comments.
type PostDetail struct {
	Post     PostWithAuthor `json:"post"`
	Comments Page[Comment]  `json:"comments"`
}

// PostsView is the composed post list shown to the operator.
type PostsView struct {
	Posts  []PostWithAuthor `json:"posts"`
	Total  int              `json:"total"`
	Source string           `json:"source"`
}

type CreatePostRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// UpdatePostRequest is a partial update; nil fields are left untouched.
type UpdatePostRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// Apply merges the partial update into p and returns the result.
func (r UpdatePostRequest) Apply(p Post) Post {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Body != nil {
		p.Body = *r.Body
	}

	return p
}

type CreateCommentRequest struct {
	Body   string `json:"body"`
	PostID int    `json:"postId"`
	UserID int    `json:"userId"`
}

type UpdateCommentRequest struct {
	Body string `json:"body"`
}

// ListPostsParams selects one page of the plain post list.
type ListPostsParams struct {
	Skip   int    `json:"skip" url:"skip"`
	Limit  int    `json:"limit" url:"limit"`
	SortBy string `json:"sortBy,omitempty" url:"sortBy,omitempty"`
	Order  string `json:"order,omitempty" url:"order,omitempty"`
}

// ListUsersParams selects users; Limit 0 means all of them.
type ListUsersParams struct {
	Limit  int    `url:"limit"`
	Select string `url:"select,omitempty"`
}
