// Package idxadvisor provisions MongoDB indexes from a declarative catalog
// and advises on index usage and slow queries.
//
//	adv, _ := idxadvisor.New(
//	    idxadvisor.WithMongoDB("mongodb://localhost:27017", "storefront"),
//	)
//	defer adv.Close()
//
//	outcomes := adv.ProvisionAll(ctx)
//	reports, _ := adv.Analyze(ctx)
//	advisories := adv.Classify(records)
//	order := idxadvisor.Recommend(filter, sort)
//	snap, _ := adv.Snapshot(ctx)
//
// The built-in catalog covers the storefront collections (trips, bookings,
// reviews, users, sessions). Use WithCatalog to apply another one.
package idxadvisor
