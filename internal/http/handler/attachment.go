package handler

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

const presignExpiry = 15 * time.Minute

// UploadAttachment stores the raw request body as the document's PDF
// attachment. A previous attachment is replaced, not accumulated.
func UploadAttachment(attSvc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "request body is empty")
		}
		att, err := attSvc.Upload(c.UserContext(), c.Params("documentId"), bytes.NewReader(body), int64(len(body)))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(att)
	}
}

// FetchAttachment streams the PDF blob attached to a document. With
// ?presign=true it redirects to a time-limited download URL instead of
// proxying the bytes.
func FetchAttachment(attSvc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.QueryBool("presign") {
			u, err := attSvc.PresignFetch(c.UserContext(), c.Params("documentId"), presignExpiry)
			if err != nil {
				return writeServiceError(c, err)
			}
			return c.Redirect(u, fiber.StatusTemporaryRedirect)
		}

		rc, _, err := attSvc.Fetch(c.UserContext(), c.Params("documentId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		// fasthttp closes the stream when it implements io.Closer.
		return c.SendStream(rc)
	}
}

// DeleteAttachment removes a document's attachment: blob first, then the
// metadata record.
func DeleteAttachment(attSvc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := attSvc.Delete(c.UserContext(), c.Params("documentId")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
