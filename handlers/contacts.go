package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/contacts-rest/datastores"
	"github.com/oaiiae/contacts-rest/services"
)

type Contacts struct {
	Service      *services.Contacts
	ErrorHandler func(context.Context, error)
}

type ContactModel struct {
	ID    ds.ContactID `json:"id"    example:"1"               readOnly:"true"`
	Name  string       `json:"name"  example:"John Smith"`
	Email string       `json:"email" example:"john@example.com"`
	Phone string       `json:"phone" example:"555-0100"`
}

func newContactModel(c *ds.Contact) ContactModel {
	return ContactModel{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// ContactPatchModel is the request body of create and update.
// Absent fields are left unchanged by an update.
type ContactPatchModel struct {
	ID    string  `json:"id,omitempty"    doc:"ignored, ids are assigned by the server"`
	Name  *string `json:"name,omitempty"  example:"John Smith"`
	Email *string `json:"email,omitempty" example:"john@example.com"`
	Phone *string `json:"phone,omitempty" example:"555-0100"`
}

func (m *ContactPatchModel) patch() services.ContactPatch {
	return services.ContactPatch{Name: m.Name, Email: m.Email, Phone: m.Phone}
}

func (h *Contacts) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/contacts",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opID("list-contacts"),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

type ContactsListOutput struct {
	Body []ContactModel
}

func (h *Contacts) list(ctx context.Context, input *struct {
	Query string `query:"q"    doc:"case-insensitive search on the name" example:"john"`
	Sort  string `query:"sort" doc:"sort by field, insertion order if empty" enum:"name,email,phone"`
}) (*ContactsListOutput, error) {
	contacts, err := h.Service.List(ctx, services.ListParams{Query: input.Query, SortBy: input.Sort})
	if err != nil {
		return nil, err
	}

	body := make([]ContactModel, 0, len(contacts))
	for _, contact := range contacts {
		body = append(body, newContactModel(contact))
	}

	return &ContactsListOutput{Body: body}, nil
}

func (h *Contacts) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/contacts/{id}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opID("get-contact"),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type ContactOutput struct {
	Body ContactModel
}

func (h *Contacts) get(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" example:"1" doc:"ID of the contact to get"`
}) (*ContactOutput, error) {
	contact, err := h.Service.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ContactOutput{Body: newContactModel(contact)}, nil
}

func (h *Contacts) RegisterPost(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/contacts",
		handlerWithErrorHandler(h.post, h.ErrorHandler),
		opID("create-contact"),
		opStatus(http.StatusOK),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

func (h *Contacts) post(ctx context.Context, input *struct {
	Body ContactPatchModel
}) (*ContactOutput, error) {
	contact, err := h.Service.Create(ctx, input.Body.patch())
	if err != nil {
		return nil, err
	}
	return &ContactOutput{Body: newContactModel(contact)}, nil
}

func (h *Contacts) RegisterPut(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/contacts/{id}",
		handlerWithErrorHandler(h.put, h.ErrorHandler),
		opID("update-contact"),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

func (h *Contacts) put(ctx context.Context, input *struct {
	ID   ds.ContactID `path:"id" example:"1" doc:"ID of the contact to update"`
	Body ContactPatchModel
}) (*ContactOutput, error) {
	contact, err := h.Service.Update(ctx, input.ID, input.Body.patch())
	if err != nil {
		return nil, err
	}
	return &ContactOutput{Body: newContactModel(contact)}, nil
}

func (h *Contacts) RegisterDel(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/contacts/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opID("delete-contact"),
		opStatus(http.StatusOK),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type MessageOutput struct {
	Body struct {
		Message string `json:"message" example:"Contact deleted successfully"`
	}
}

func (h *Contacts) del(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" example:"1" doc:"ID of the contact to delete"`
}) (*MessageOutput, error) {
	err := h.Service.Delete(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := &MessageOutput{}
	out.Body.Message = "Contact deleted successfully"
	return out, nil
}
