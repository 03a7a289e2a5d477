package catalog

import "github.com/kailas-cloud/idxadvisor/internal/domain/index"

const sessionTTLSeconds int32 = 7 * 24 * 60 * 60

func asc(field string) index.Key  { return index.Key{Field: field, Kind: index.Ascending} }
func desc(field string) index.Key { return index.Key{Field: field, Kind: index.Descending} }

func spec(coll string, opts index.Options, keys ...index.Key) index.Spec {
	return index.MustNew(coll, keys, opts)
}

// Default returns the storefront catalog.
func Default() *Catalog {
	none := index.Options{}
	unique := index.Options{Unique: true}

	c, err := New(
		Entry{Collection: "trips", Specs: []index.Spec{
			spec("trips", none, index.Key{Field: "location", Kind: index.Geo2DSphere}),
			spec("trips", none, asc("category"), asc("price")),
			spec("trips", none,
				index.Key{Field: "title", Kind: index.Text},
				index.Key{Field: "description", Kind: index.Text},
			),
			spec("trips", none, asc("featured"), desc("createdAt")),
			spec("trips", unique, asc("slug")),
		}},
		Entry{Collection: "bookings", Specs: []index.Spec{
			spec("bookings", none, asc("user"), desc("createdAt")),
			spec("bookings", none, asc("trip"), asc("checkInDate")),
			spec("bookings", none, asc("status"), asc("checkInDate")),
			spec("bookings", unique, asc("paymentIntentId")),
		}},
		Entry{Collection: "reviews", Specs: []index.Spec{
			spec("reviews", none, asc("trip"), desc("createdAt")),
			spec("reviews", unique, asc("user"), asc("trip")),
			spec("reviews", none, desc("rating")),
		}},
		Entry{Collection: "users", Specs: []index.Spec{
			spec("users", unique, asc("email")),
			spec("users", none, asc("role")),
		}},
		Entry{Collection: "sessions", Specs: []index.Spec{
			spec("sessions", index.Options{TTLSeconds: index.TTL(sessionTTLSeconds)}, asc("createdAt")),
		}},
	)
	if err != nil {
		panic(err)
	}
	return c
}
