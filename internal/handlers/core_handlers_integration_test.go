package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threadloom/threadloom/internal/handlers/testutil"
	"github.com/threadloom/threadloom/internal/services"
)

type communityPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Banner   string `json:"banner"`
	Logo     string `json:"logo"`
	IsPublic bool   `json:"is_public"`
}

type postPayload struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	MediaURL     string `json:"media_url"`
	Upvotes      int64  `json:"upvotes"`
	Downvotes    int64  `json:"downvotes"`
	Score        int64  `json:"vote_score"`
	CommentCount int64  `json:"comment_count"`
	UserVote     string `json:"user_vote"`
}

type commentPayload struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func createCommunity(t *testing.T, env *testutil.Env, token, name string) communityPayload {
	t.Helper()

	w := env.MultipartRequest(http.MethodPost, "/api/communities", map[string]string{
		"name":        name,
		"description": "a place for " + name,
	}, nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Community communityPayload `json:"community"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &data)
	require.NotEmpty(t, data.Community.ID)
	return data.Community
}

func createProfilePost(t *testing.T, env *testutil.Env, token, authorID, title string) postPayload {
	t.Helper()

	w := env.MultipartRequest(http.MethodPost, "/api/posts", map[string]string{
		"title":    title,
		"content":  "content of " + title,
		"authorId": authorID,
	}, nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Post postPayload `json:"post"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &data)
	require.NotEmpty(t, data.Post.ID)
	return data.Post
}

func TestCommunityHandler_CreateWithImages(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")

	files := []testutil.FilePart{
		{Field: "bannerImage", Filename: "banner.png", ContentType: "image/png", Body: []byte("banner-bytes")},
		{Field: "logoImage", Filename: "logo.jpg", ContentType: "image/jpeg", Body: []byte("logo-bytes")},
	}
	w := env.MultipartRequest(http.MethodPost, "/api/communities", map[string]string{
		"name":     "gophers",
		"isPublic": "false",
	}, files, session.Tokens.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Community communityPayload `json:"community"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &data)
	require.False(t, data.Community.IsPublic)
	require.True(t, strings.HasSuffix(data.Community.Banner, ".png"), data.Community.Banner)
	require.True(t, strings.HasSuffix(data.Community.Logo, ".jpg"), data.Community.Logo)
	require.Equal(t, 2, env.Store.Len())

	banner, ok := env.Store.Object(data.Community.Banner)
	require.True(t, ok)
	require.Equal(t, []byte("banner-bytes"), banner)
}

func TestCommunityHandler_RejectsVideoBanner(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")

	files := []testutil.FilePart{
		{Field: "bannerImage", Filename: "banner.mp4", ContentType: "video/mp4", Body: []byte("video-bytes")},
	}
	w := env.MultipartRequest(http.MethodPost, "/api/communities", map[string]string{
		"name": "filmbuffs",
	}, files, session.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	require.Equal(t, 0, env.Store.Len())
}

func TestCommunityHandler_DuplicateName(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")

	createCommunity(t, env, session.Tokens.AccessToken, "dupes")
	w := env.MultipartRequest(http.MethodPost, "/api/communities", map[string]string{
		"name": "dupes",
	}, nil, session.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestCommunityHandler_DeleteRequiresCreator(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.Signup("AuthPassw0rd!")
	other := env.Signup("AuthPassw0rd!")

	community := createCommunity(t, env, owner.Tokens.AccessToken, "owned")

	denied := env.Request(http.MethodDelete, "/api/communities/"+community.ID, nil, other.Tokens.AccessToken)
	require.Equal(t, http.StatusForbidden, denied.Code, denied.Body.String())

	allowed := env.Request(http.MethodDelete, "/api/communities/"+community.ID, nil, owner.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, allowed.Code, allowed.Body.String())

	missing := env.Request(http.MethodGet, "/api/communities/"+community.ID, nil, owner.Tokens.AccessToken)
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestCommunityHandler_ListRequiresAuth(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/communities", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostHandler_ProfileAndCommunityPosts(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")
	token := session.Tokens.AccessToken

	community := createCommunity(t, env, token, "posting")
	createProfilePost(t, env, token, session.User.ID, "profile post")

	w := env.MultipartRequest(http.MethodPost, "/api/posts", map[string]string{
		"title":       "community post",
		"content":     "hello community",
		"communityId": community.ID,
	}, nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	all := env.Request(http.MethodGet, "/api/posts", nil, "")
	require.Equal(t, http.StatusOK, all.Code)
	allResp := testutil.DecodeResponse(t, all)
	require.Equal(t, 2, allResp.Meta.Results)

	filtered := env.Request(http.MethodGet, "/api/posts?communityId="+community.ID, nil, "")
	var filteredData struct {
		Posts []postPayload `json:"posts"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, filtered).Data, &filteredData)
	require.Len(t, filteredData.Posts, 1)
	require.Equal(t, "community post", filteredData.Posts[0].Title)

	byAuthor := env.Request(http.MethodGet, "/api/posts/author/posts?authorId="+session.User.ID, nil, token)
	require.Equal(t, http.StatusOK, byAuthor.Code, byAuthor.Body.String())
	var authorData struct {
		Posts []postPayload `json:"posts"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, byAuthor).Data, &authorData)
	require.Len(t, authorData.Posts, 1)
	require.Equal(t, "profile post", authorData.Posts[0].Title)
}

func TestPostHandler_CreateRejectsAmbiguousTarget(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")
	community := createCommunity(t, env, session.Tokens.AccessToken, "ambiguous")

	w := env.MultipartRequest(http.MethodPost, "/api/posts", map[string]string{
		"title":       "both targets",
		"content":     "nope",
		"authorId":    session.User.ID,
		"communityId": community.ID,
	}, nil, session.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestPostHandler_CreateForOtherUserForbidden(t *testing.T) {
	env := testutil.NewEnv(t)
	author := env.Signup("AuthPassw0rd!")
	imposter := env.Signup("AuthPassw0rd!")

	w := env.MultipartRequest(http.MethodPost, "/api/posts", map[string]string{
		"title":    "forged",
		"content":  "not yours",
		"authorId": author.User.ID,
	}, nil, imposter.Tokens.AccessToken)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
}

func TestPostHandler_MediaUploadAndReplace(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")
	token := session.Tokens.AccessToken

	w := env.MultipartRequest(http.MethodPost, "/api/posts", map[string]string{
		"title":    "with media",
		"authorId": session.User.ID,
	}, []testutil.FilePart{
		{Field: "media", Filename: "clip.mp4", ContentType: "video/mp4", Body: []byte("clip-bytes")},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Post postPayload `json:"post"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &created)
	require.True(t, strings.HasSuffix(created.Post.MediaURL, ".mp4"))
	require.Equal(t, 1, env.Store.Len())

	update := env.MultipartRequest(http.MethodPut, "/api/posts/"+created.Post.ID, nil, []testutil.FilePart{
		{Field: "media", Filename: "photo.png", ContentType: "image/png", Body: []byte("photo-bytes")},
	}, token)
	require.Equal(t, http.StatusOK, update.Code, update.Body.String())

	var updated struct {
		Post postPayload `json:"post"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, update).Data, &updated)
	require.True(t, strings.HasSuffix(updated.Post.MediaURL, ".png"))

	// The replaced object is gone from the store.
	require.Equal(t, 1, env.Store.Len())
	_, ok := env.Store.Object(created.Post.MediaURL)
	require.False(t, ok)
}

func TestPostHandler_UpdateOnlyAuthor(t *testing.T) {
	env := testutil.NewEnv(t)
	author := env.Signup("AuthPassw0rd!")
	other := env.Signup("AuthPassw0rd!")

	post := createProfilePost(t, env, author.Tokens.AccessToken, author.User.ID, "mine")

	w := env.MultipartRequest(http.MethodPut, "/api/posts/"+post.ID, map[string]string{
		"title": "stolen",
	}, nil, other.Tokens.AccessToken)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
}

func TestPostHandler_DeleteCascades(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")
	token := session.Tokens.AccessToken

	post := createProfilePost(t, env, token, session.User.ID, "doomed")

	comment := env.Request(http.MethodPost, "/api/comments", map[string]string{
		"post_id": post.ID,
		"content": "soon gone",
	}, token)
	require.Equal(t, http.StatusCreated, comment.Code, comment.Body.String())

	vote := env.Request(http.MethodPost, "/api/votes", map[string]string{
		"post_id": post.ID,
		"type":    "UP",
	}, token)
	require.Equal(t, http.StatusOK, vote.Code, vote.Body.String())

	deleted := env.Request(http.MethodDelete, "/api/posts/"+post.ID, nil, token)
	require.Equal(t, http.StatusOK, deleted.Code, deleted.Body.String())

	missing := env.Request(http.MethodGet, "/api/posts/"+post.ID, nil, "")
	require.Equal(t, http.StatusNotFound, missing.Code)

	orphans := env.Request(http.MethodGet, "/api/comments/post/"+post.ID, nil, token)
	require.Equal(t, http.StatusNotFound, orphans.Code)
}

func TestPostHandler_GetAttachesRequesterVote(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")
	token := session.Tokens.AccessToken

	post := createProfilePost(t, env, token, session.User.ID, "voted")

	cast := env.Request(http.MethodPost, "/api/votes", map[string]string{
		"post_id": post.ID,
		"type":    "DOWN",
	}, token)
	require.Equal(t, http.StatusOK, cast.Code, cast.Body.String())

	authed := env.Request(http.MethodGet, "/api/posts/"+post.ID, nil, token)
	require.Equal(t, http.StatusOK, authed.Code)
	var authedData struct {
		Post postPayload `json:"post"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, authed).Data, &authedData)
	require.Equal(t, "DOWN", authedData.Post.UserVote)
	require.Equal(t, int64(1), authedData.Post.Downvotes)

	anon := env.Request(http.MethodGet, "/api/posts/"+post.ID, nil, "")
	require.Equal(t, http.StatusOK, anon.Code)
	var anonData struct {
		Post postPayload `json:"post"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, anon).Data, &anonData)
	require.Empty(t, anonData.Post.UserVote)
	require.Equal(t, int64(1), anonData.Post.Downvotes)
}

func TestCommentHandler_CRUD(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")
	token := session.Tokens.AccessToken

	post := createProfilePost(t, env, token, session.User.ID, "discussed")

	created := env.Request(http.MethodPost, "/api/comments", map[string]string{
		"post_id": post.ID,
		"content": "first",
	}, token)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var createdData struct {
		Comment commentPayload `json:"comment"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, created).Data, &createdData)

	updated := env.Request(http.MethodPut, "/api/comments/"+createdData.Comment.ID, map[string]string{
		"content": "edited",
	}, token)
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())

	byUser := env.Request(http.MethodGet, "/api/comments/user/"+session.User.ID, nil, token)
	require.Equal(t, http.StatusOK, byUser.Code)
	var byUserData struct {
		Comments []commentPayload `json:"comments"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, byUser).Data, &byUserData)
	require.Len(t, byUserData.Comments, 1)
	require.Equal(t, "edited", byUserData.Comments[0].Content)

	removed := env.Request(http.MethodDelete, "/api/comments/"+createdData.Comment.ID, nil, token)
	require.Equal(t, http.StatusOK, removed.Code, removed.Body.String())

	byPost := env.Request(http.MethodGet, "/api/comments/post/"+post.ID, nil, token)
	require.Equal(t, http.StatusOK, byPost.Code)
	require.Equal(t, 0, testutil.DecodeResponse(t, byPost).Meta.Results)
}

func TestCommentHandler_UpdateOnlyAuthor(t *testing.T) {
	env := testutil.NewEnv(t)
	author := env.Signup("AuthPassw0rd!")
	other := env.Signup("AuthPassw0rd!")

	post := createProfilePost(t, env, author.Tokens.AccessToken, author.User.ID, "commented")

	created := env.Request(http.MethodPost, "/api/comments", map[string]string{
		"post_id": post.ID,
		"content": "original",
	}, author.Tokens.AccessToken)
	require.Equal(t, http.StatusCreated, created.Code)
	var createdData struct {
		Comment commentPayload `json:"comment"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, created).Data, &createdData)

	w := env.Request(http.MethodPut, "/api/comments/"+createdData.Comment.ID, map[string]string{
		"content": "hijacked",
	}, other.Tokens.AccessToken)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
}

func TestVoteHandler_ToggleAndFlip(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")
	token := session.Tokens.AccessToken

	post := createProfilePost(t, env, token, session.User.ID, "scored")

	type voteBody struct {
		Vote *struct {
			Type string `json:"type"`
		} `json:"vote"`
		Counts services.VoteCounts `json:"counts"`
	}

	cast := func(voteType string) voteBody {
		w := env.Request(http.MethodPost, "/api/votes", map[string]string{
			"post_id": post.ID,
			"type":    voteType,
		}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body voteBody
		testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &body)
		return body
	}

	up := cast("UP")
	require.NotNil(t, up.Vote)
	require.Equal(t, int64(1), up.Counts.Upvotes)
	require.Equal(t, int64(1), up.Counts.Score)

	flipped := cast("DOWN")
	require.Equal(t, "DOWN", flipped.Vote.Type)
	require.Equal(t, int64(0), flipped.Counts.Upvotes)
	require.Equal(t, int64(1), flipped.Counts.Downvotes)

	// Casting the same type again toggles the vote off.
	toggled := cast("DOWN")
	require.Nil(t, toggled.Vote)
	require.Equal(t, int64(0), toggled.Counts.Downvotes)
}

func TestVoteHandler_InvalidType(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")

	post := createProfilePost(t, env, session.Tokens.AccessToken, session.User.ID, "typed")

	w := env.Request(http.MethodPost, "/api/votes", map[string]string{
		"post_id": post.ID,
		"type":    "SIDEWAYS",
	}, session.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestVoteHandler_RemoveVote(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Signup("AuthPassw0rd!")
	token := session.Tokens.AccessToken

	post := createProfilePost(t, env, token, session.User.ID, "removable")

	cast := env.Request(http.MethodPost, "/api/votes", map[string]string{
		"post_id": post.ID,
		"type":    "UP",
	}, token)
	require.Equal(t, http.StatusOK, cast.Code)

	removed := env.Request(http.MethodDelete, "/api/votes/"+post.ID, nil, token)
	require.Equal(t, http.StatusOK, removed.Code, removed.Body.String())

	again := env.Request(http.MethodDelete, "/api/votes/"+post.ID, nil, token)
	require.Equal(t, http.StatusNotFound, again.Code, again.Body.String())
}
