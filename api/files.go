package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apimodel "github.com/smarttech/storefront/api/model"
	"github.com/smarttech/storefront/model"
)

// UploadImage stores the multipart "file" field as an image.
func (a Api) UploadImage(c *gin.Context) {
	a.upload(c, model.MediaImages, "Image uploaded successfully")
}

// UploadVideo stores the multipart "file" field as a video.
func (a Api) UploadVideo(c *gin.Context) {
	a.upload(c, model.MediaVideos, "Video uploaded successfully")
}

func (a Api) upload(c *gin.Context, kind model.MediaKind, message string) {
	header, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "file is required"})
		return
	}
	src, err := header.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "could not read uploaded file"})
		return
	}
	defer src.Close()

	f, err := a.storefront.UploadMedia(c.Request.Context(), kind, header.Filename, header.Header.Get("Content-Type"), src)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename":          f.Filename,
		"original_filename": f.OriginalFilename,
		"url":               f.URL,
		"message":           message,
	})
}

func (a Api) ListFiles(c *gin.Context) {
	list, err := a.storefront.ListMedia(model.MediaKind(c.Param("file_type")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": list})
}

// DeleteFile removes one stored image or video.
func (a Api) DeleteFile(c *gin.Context) {
	filename := c.Param("filename")
	if err := a.storefront.DeleteMedia(model.MediaKind(c.Param("file_type")), filename); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("File %s deleted successfully", filename)})
}

// UpdateProductMedia takes images and video_url from the JSON body; video_url
// may also come as a query parameter.
func (a Api) UpdateProductMedia(c *gin.Context) {
	id, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	var req apimodel.UpdateProductMedia
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	if v, present := c.GetQuery("video_url"); present && req.VideoURL == nil {
		req.VideoURL = &v
	}

	product, err := a.storefront.UpdateProductMedia(c.Request.Context(), id, req.Images, req.VideoURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Product media updated successfully",
		"product_id": id,
		"images":     product.Images,
		"video_url":  product.VideoURL,
	})
}
