package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/intercord/pkg/intercom"
)

const (
	fieldEmail      = "email"
	fieldExternalID = "external_id"

	roleUser = "user"
)

// ResolveContact returns the ID of the contact for the user, creating one when none exists. The email is used
// as the key when known, otherwise the user ID as the external ID. Only an empty search result leads to a
// create; a failed search is returned as an error.
func ResolveContact(ctx context.Context, contacts Contacts, userID, email, name string) (string, error) {
	field, value := fieldExternalID, userID
	if email != "" {
		field, value = fieldEmail, email
	}

	found, err := contacts.SearchContacts(ctx, field, value)
	if err != nil {
		return "", fmt.Errorf("error searching contacts by %s: %w", field, err)
	}
	for _, c := range found {
		if c.ID != "" {
			return c.ID, nil
		}
	}

	if name == "" {
		name = "Discord User " + userID
	}

	created, err := contacts.CreateContact(ctx, &intercom.ContactCreate{
		Role:       roleUser,
		ExternalID: userID,
		Email:      email,
		Name:       name,
	})
	if err != nil {
		return "", fmt.Errorf("error creating contact: %w", err)
	} else if created == nil || created.ID == "" {
		return "", errors.New("contact created without an id")
	}
	return created.ID, nil
}
