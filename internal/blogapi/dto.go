package blogapi

import (
	"bytes"
	"encoding/json"
)

// API response DTOs. The server is loose about shapes: some endpoints wrap
// payloads in {"data": ...}, and counters may arrive as numbers or arrays.

type authorDTO struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Headline  string  `json:"headline"`
	AvatarURL *string `json:"avatarUrl"`
}

type postDTO struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	ImageURL  *string   `json:"imageUrl"`
	Author    authorDTO `json:"author"`
	CreatedAt string    `json:"createdAt"`
	Likes     countDTO  `json:"likes"`
	Comments  countDTO  `json:"comments"`
}

type pageDTO struct {
	Data     []postDTO `json:"data"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	LastPage int       `json:"lastPage"`
}

type commentDTO struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt string    `json:"createdAt"`
	Author    authorDTO `json:"author"`
}

type likeDTO struct {
	Likes *int     `json:"likes"`
	Liked *bool    `json:"liked"`
	Data  *likeDTO `json:"data"`
}

type tokenDTO struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	Data        *struct {
		Token string `json:"token"`
	} `json:"data"`
}

type passwordDTO struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// countDTO accepts a number, an array (counted), or null
type countDTO int

func (c *countDTO) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if b[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*c = countDTO(len(items))
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = countDTO(n)
	return nil
}

// unwrapList accepts either [...] or {"data": [...]}
func unwrapList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		return decode[[]T](raw)
	}
	env, err := decode[struct {
		Data []T `json:"data"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// unwrapObject accepts either {...} or {"data": {...}}. ok is false when the
// body carried no object with a non-zero id.
func unwrapObject[T interface{ id() int64 }](raw json.RawMessage) (T, bool) {
	var direct T
	if len(raw) == 0 {
		return direct, false
	}
	if json.Unmarshal(raw, &direct) == nil && direct.id() != 0 {
		return direct, true
	}
	var env struct {
		Data T `json:"data"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Data.id() != 0 {
		return env.Data, true
	}
	return direct, false
}

func (p postDTO) id() int64    { return p.ID }
func (c commentDTO) id() int64 { return c.ID }
func (a authorDTO) id() int64  { return a.ID }
