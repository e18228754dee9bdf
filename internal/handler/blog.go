package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/templui/blogapi/internal/ctxkeys"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/service"
)

type BlogHandler struct {
	blogService    *service.BlogService
	commentService *service.CommentService
}

func NewBlogHandler(blogService *service.BlogService, commentService *service.CommentService) *BlogHandler {
	return &BlogHandler{
		blogService:    blogService,
		commentService: commentService,
	}
}

// imageInput accepts either a bare URL string or
// {"url", "caption", "alt", "order"}.
type imageInput struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Alt     string `json:"alt"`
	Order   *int   `json:"order"`
}

func (in *imageInput) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &in.URL)
	}
	type plain imageInput
	return json.Unmarshal(data, (*plain)(in))
}

// toImages keeps the array order unless entries carry an explicit order.
// Entries without one sort by their position in the request.
func toImages(inputs []imageInput) []service.ImageInput {
	type keyed struct {
		in  imageInput
		key int
	}

	sorted := make([]keyed, len(inputs))
	for i, in := range inputs {
		sorted[i] = keyed{in: in, key: i}
		if in.Order != nil {
			sorted[i].key = *in.Order
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].key < sorted[j].key
	})

	images := make([]service.ImageInput, 0, len(sorted))
	for _, k := range sorted {
		images = append(images, service.ImageInput{URL: k.in.URL, Caption: k.in.Caption, Alt: k.in.Alt})
	}
	return images
}

type blogRequest struct {
	Title         *string           `json:"title"`
	Content       *string           `json:"content"`
	Excerpt       *string           `json:"excerpt"`
	CategoryID    *int64            `json:"category_id"`
	FeaturedImage *string           `json:"featured_image"`
	Status        *model.BlogStatus `json:"status"`
	Images        *[]imageInput     `json:"images"`
}

type blogResponse struct {
	Message string            `json:"message"`
	Blog    *model.BlogDetail `json:"blog"`
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.blogService.List(r.Context(), service.ListBlogsInput{
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
		Search:   q.Get("search"),
		Category: q.Get("category"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *BlogHandler) MyBlogs(w http.ResponseWriter, r *http.Request) {
	list, err := h.blogService.MyBlogs(r.Context(), ctxkeys.IdentityID(r.Context()), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogService.Get(r.Context(), r.PathValue("id"), ctxkeys.Identity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.CreateBlogInput{
		Title:         deref(req.Title),
		Content:       deref(req.Content),
		Excerpt:       req.Excerpt,
		CategoryID:    req.CategoryID,
		FeaturedImage: req.FeaturedImage,
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Images != nil {
		in.Images = toImages(*req.Images)
	}

	blog, err := h.blogService.Create(r.Context(), ctxkeys.IdentityID(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, blogResponse{Message: "Tạo blog thành công", Blog: blog})
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.UpdateBlogInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CategoryID:    req.CategoryID,
		FeaturedImage: req.FeaturedImage,
		Status:        req.Status,
	}
	if req.Images != nil {
		images := toImages(*req.Images)
		in.Images = &images
	}

	blog, err := h.blogService.Update(r.Context(), ctxkeys.IdentityID(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, blogResponse{Message: "Cập nhật blog thành công", Blog: blog})
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.blogService.Delete(r.Context(), ctxkeys.IdentityID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Xóa blog thành công"})
}

func (h *BlogHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	result, err := h.blogService.ToggleLike(r.Context(), ctxkeys.IdentityID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := "Đã bỏ thích"
	if result.Liked {
		msg = "Đã thích"
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*service.LikeResult
	}{
		Message:    msg,
		LikeResult: result,
	})
}

func (h *BlogHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.List(r.Context(), r.PathValue("id"), ctxkeys.IdentityID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *BlogHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	comment, err := h.commentService.Create(r.Context(), ctxkeys.IdentityID(r.Context()), r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
