package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"cboard-backend/internal/model"
)

const batchSize = 250 // Stay well under Firestore's 500 operation limit

// Client mirrors organizations and flyers into Firestore and reads them back.
type Client struct {
	client        *firestore.Client
	organizations string
	flyers        string
}

// New creates a new Firestore client using the given collection names.
func New(ctx context.Context, projectID, organizations, flyers string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Client{
		client:        client,
		organizations: organizations,
		flyers:        flyers,
	}, nil
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	return c.client.Close()
}

// ReplaceOrganizations replaces the organizations collection with orgs.
func (c *Client) ReplaceOrganizations(ctx context.Context, orgs []model.Organization, batchID string) error {
	docs := make(map[string]map[string]interface{}, len(orgs))
	for _, o := range orgs {
		docs[organizationDocID(o)] = organizationToMap(o, batchID)
	}
	return c.replace(ctx, c.organizations, docs)
}

// ReplaceFlyers replaces the flyers collection with flyers.
func (c *Client) ReplaceFlyers(ctx context.Context, flyers []model.Flyer, batchID string) error {
	docs := make(map[string]map[string]interface{}, len(flyers))
	for i, f := range flyers {
		m := flyerToMap(f, batchID)
		m["position"] = i
		docs[flyerDocID(f)] = m
	}
	return c.replace(ctx, c.flyers, docs)
}

// replace deletes every document of a collection, then writes docs in batches.
func (c *Client) replace(ctx context.Context, collection string, docs map[string]map[string]interface{}) error {
	if err := c.deleteAll(ctx, collection); err != nil {
		return fmt.Errorf("deleting existing documents: %w", err)
	}

	coll := c.client.Collection(collection)
	batch := c.client.Batch()
	pending := 0
	for id, data := range docs {
		batch.Set(coll.Doc(id), data)
		pending++
		if pending == batchSize {
			if _, err := batch.Commit(ctx); err != nil {
				return fmt.Errorf("committing batch: %w", err)
			}
			batch = c.client.Batch()
			pending = 0
		}
	}
	if pending > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing batch: %w", err)
		}
	}
	return nil
}

func (c *Client) deleteAll(ctx context.Context, collection string) error {
	coll := c.client.Collection(collection)

	for {
		iter := coll.Limit(batchSize).Documents(ctx)
		batch := c.client.Batch()
		numDeleted := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("iterating documents: %w", err)
			}
			batch.Delete(doc.Ref)
			numDeleted++
		}

		if numDeleted == 0 {
			return nil
		}

		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing delete batch: %w", err)
		}

		if numDeleted < batchSize {
			return nil
		}
	}
}

// Organizations returns all mirrored organizations ordered by id.
func (c *Client) Organizations(ctx context.Context) ([]model.Organization, error) {
	orgs := []model.Organization{}

	iter := c.client.Collection(c.organizations).OrderBy("id", firestore.Asc).Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating organizations: %w", err)
		}
		orgs = append(orgs, mapToOrganization(doc.Data()))
	}
	return orgs, nil
}

// Flyers returns all mirrored flyers in sheet order.
func (c *Client) Flyers(ctx context.Context) ([]model.Flyer, error) {
	flyers := []model.Flyer{}

	iter := c.client.Collection(c.flyers).OrderBy("position", firestore.Asc).Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating flyers: %w", err)
		}
		flyers = append(flyers, mapToFlyer(doc.Data()))
	}
	return flyers, nil
}

func organizationDocID(o model.Organization) string {
	if o.Slug != "" {
		return o.Slug
	}
	return hashID(o.ID, o.Name)
}

// flyerDocID derives a stable document ID from the flyer's identifying fields.
func flyerDocID(f model.Flyer) string {
	return hashID(f.ID, f.Title, f.StartDate)
}

func hashID(parts ...string) string {
	data := ""
	for i, p := range parts {
		if i > 0 {
			data += "|"
		}
		data += p
	}
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

func organizationToMap(o model.Organization, batchID string) map[string]interface{} {
	m := map[string]interface{}{
		"id":   o.ID,
		"name": o.Name,
		"slug": o.Slug,
		"type": o.Type,
	}
	if batchID != "" {
		m["batch_id"] = batchID
	}
	return m
}

func mapToOrganization(m map[string]interface{}) model.Organization {
	o := model.Organization{}
	if v, ok := m["id"].(string); ok {
		o.ID = v
	}
	if v, ok := m["name"].(string); ok {
		o.Name = v
	}
	if v, ok := m["slug"].(string); ok {
		o.Slug = v
	}
	if v, ok := m["type"].(string); ok {
		o.Type = v
	}
	return o
}

func flyerToMap(f model.Flyer, batchID string) map[string]interface{} {
	orgs := make([]interface{}, 0, len(f.Organizations))
	for _, o := range f.Organizations {
		orgs = append(orgs, organizationToMap(o, ""))
	}
	m := map[string]interface{}{
		"id":            f.ID,
		"title":         f.Title,
		"organizations": orgs,
		"start_date":    f.StartDate,
		"end_date":      f.EndDate,
		"batch_id":      batchID,
	}
	if f.ImageURL != "" {
		m["image_url"] = f.ImageURL
	}
	if f.PostURL != "" {
		m["post_url"] = f.PostURL
	}
	if f.Location != "" {
		m["location"] = f.Location
	}
	return m
}

func mapToFlyer(m map[string]interface{}) model.Flyer {
	f := model.Flyer{Organizations: []model.Organization{}}
	if v, ok := m["id"].(string); ok {
		f.ID = v
	}
	if v, ok := m["title"].(string); ok {
		f.Title = v
	}
	if v, ok := m["organizations"].([]interface{}); ok {
		for _, item := range v {
			if om, ok := item.(map[string]interface{}); ok {
				f.Organizations = append(f.Organizations, mapToOrganization(om))
			}
		}
	}
	if v, ok := m["start_date"].(string); ok {
		f.StartDate = v
	}
	if v, ok := m["end_date"].(string); ok {
		f.EndDate = v
	}
	if v, ok := m["image_url"].(string); ok {
		f.ImageURL = v
	}
	if v, ok := m["post_url"].(string); ok {
		f.PostURL = v
	}
	if v, ok := m["location"].(string); ok {
		f.Location = v
	}
	return f
}
