// Package cosmos implements the flight store on Azure Cosmos DB.
//
// Each flight is one document partitioned by its id. Updates use ETag
// optimistic concurrency: the mutation is retried when another writer
// replaced the document between read and replace, which gives Update the
// same atomic check-then-mutate semantics as the in-memory store.
package cosmos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/sirupsen/logrus"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
)

// Well-known emulator key (public, safe to hardcode).
// See: https://learn.microsoft.com/en-us/azure/cosmos-db/emulator-linux
const emulatorKey = "C2y6yDjf5/R+ob0N8A7Cgv30VRDJIWEHLM+4QDU5DE2nQ9nDuVTqobD4b8mGGyPMbIZnqyMsEcaGQy67XIw/Jw=="

// maxUpdateRetries bounds how often Update retries a lost ETag race.
const maxUpdateRetries = 5

// Options configures the Cosmos store.
type Options struct {
	Endpoint  string
	Database  string
	Container string

	// Emulator switches to key auth against the local emulator. Key
	// overrides the well-known emulator key when set.
	Emulator bool
	Key      string

	Logger logrus.FieldLogger
}

// Store implements flights.Store on a Cosmos container.
type Store struct {
	container *azcosmos.ContainerClient
	log       logrus.FieldLogger
	nextID    atomic.Int64
}

// document is the Cosmos shape of a flight: the flight fields plus the
// string id Cosmos requires.
type document struct {
	ID string `json:"id"`
	*flights.Flight
}

// New connects to the container and seeds the id counter from the highest
// stored flight id. Database and container must already exist.
//
// Production auth goes through DefaultAzureCredential; the emulator mode
// uses key auth.
func New(ctx context.Context, opts Options) (*Store, error) {
	var client *azcosmos.Client
	var err error

	if opts.Emulator {
		key := opts.Key
		if key == "" {
			key = emulatorKey
		}
		cred, credErr := azcosmos.NewKeyCredential(key)
		if credErr != nil {
			return nil, fmt.Errorf("create key credential: %w", credErr)
		}
		client, err = azcosmos.NewClientWithKey(opts.Endpoint, cred, nil)
	} else {
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("create credential: %w", credErr)
		}
		client, err = azcosmos.NewClient(opts.Endpoint, cred, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create cosmos client: %w", err)
	}

	container, err := client.NewContainer(opts.Database, opts.Container)
	if err != nil {
		return nil, fmt.Errorf("get container client: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Store{container: container, log: log}
	if err := s.seedIDCounter(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// seedIDCounter initializes the id allocator past the highest id already
// in the container. Ids stay unique as long as one service instance
// writes at a time.
func (s *Store) seedIDCounter(ctx context.Context) error {
	query := "SELECT VALUE MAX(c.flight_id) FROM c"
	pager := s.container.NewQueryItemsPager(query, azcosmos.NewPartitionKey(), nil)

	var max int64
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", flights.ErrStoreUnavailable, err)
		}
		for _, item := range page.Items {
			var value int64
			if err := json.Unmarshal(item, &value); err != nil {
				continue
			}
			if value > max {
				max = value
			}
		}
	}
	s.nextID.Store(max)
	return nil
}

// Insert stores a copy of the flight, assigning the next id when the
// flight has none.
func (s *Store) Insert(ctx context.Context, flight *flights.Flight) (*flights.Flight, error) {
	stored := flight.Clone()
	if stored.FlightID == 0 {
		stored.FlightID = s.nextID.Add(1)
	}

	doc := document{ID: strconv.FormatInt(stored.FlightID, 10), Flight: stored}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode flight: %w", err)
	}

	pk := azcosmos.NewPartitionKeyString(doc.ID)
	if _, err := s.container.CreateItem(ctx, pk, data, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", flights.ErrStoreUnavailable, err)
	}
	return stored, nil
}

// Query scans the container and filters with the predicate. A nil
// predicate matches every flight. Results come back ordered by flight id
// so pagination stays stable across calls.
func (s *Store) Query(ctx context.Context, match flights.Predicate) ([]*flights.Flight, error) {
	query := "SELECT * FROM c ORDER BY c.flight_id"
	pager := s.container.NewQueryItemsPager(query, azcosmos.NewPartitionKey(), nil)

	var matched []*flights.Flight
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", flights.ErrStoreUnavailable, err)
		}
		for _, item := range page.Items {
			var doc document
			doc.Flight = &flights.Flight{}
			if err := json.Unmarshal(item, &doc); err != nil {
				s.log.WithError(err).Warn("skipping undecodable flight document")
				continue
			}
			if match == nil || match(doc.Flight) {
				matched = append(matched, doc.Flight)
			}
		}
	}
	return matched, nil
}

// Get reads one flight by id.
func (s *Store) Get(ctx context.Context, id int64) (*flights.Flight, error) {
	flight, _, err := s.read(ctx, id)
	return flight, err
}

// read fetches a flight and its ETag.
func (s *Store) read(ctx context.Context, id int64) (*flights.Flight, azcore.ETag, error) {
	key := strconv.FormatInt(id, 10)
	pk := azcosmos.NewPartitionKeyString(key)

	resp, err := s.container.ReadItem(ctx, pk, key, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, "", fmt.Errorf("%w: id %d", flights.ErrFlightNotFound, id)
		}
		return nil, "", fmt.Errorf("%w: %v", flights.ErrStoreUnavailable, err)
	}

	doc := document{Flight: &flights.Flight{}}
	if err := json.Unmarshal(resp.Value, &doc); err != nil {
		return nil, "", fmt.Errorf("decode flight %d: %w", id, err)
	}
	return doc.Flight, resp.ETag, nil
}

// Update applies fn to the flight and replaces the document, retrying on
// ETag conflicts. An error from fn aborts the update and is returned
// unchanged.
func (s *Store) Update(ctx context.Context, id int64, fn flights.MutateFunc) (*flights.Flight, error) {
	key := strconv.FormatInt(id, 10)
	pk := azcosmos.NewPartitionKeyString(key)

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		flight, etag, err := s.read(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := fn(flight); err != nil {
			return nil, err
		}

		doc := document{ID: key, Flight: flight}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode flight: %w", err)
		}

		_, err = s.container.ReplaceItem(ctx, pk, key, data, &azcosmos.ItemOptions{
			IfMatchEtag: &etag,
		})
		if err == nil {
			return flight, nil
		}

		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusPreconditionFailed {
			s.log.WithFields(logrus.Fields{
				"flight_id": id,
				"attempt":   attempt + 1,
			}).Debug("etag conflict, retrying update")
			continue
		}
		return nil, fmt.Errorf("%w: %v", flights.ErrStoreUnavailable, err)
	}
	return nil, fmt.Errorf("%w: update of flight %d kept losing etag races",
		flights.ErrStoreUnavailable, id)
}

var _ flights.Store = (*Store)(nil)
