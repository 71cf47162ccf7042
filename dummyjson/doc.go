// Package dummyjson provides typed clients for the DummyJSON demo API
// (https://dummyjson.com).
//
// The resource clients are thin: each operation issues exactly one request
// through a shared *apiclient.Client and decodes the body with package
// model. Retries, default headers and logging all live in the core client.
//
//	api, err := apiclient.NewClient(apiclient.DefaultConfig(dummyjson.DefaultBaseURL))
//	if err != nil {
//		return err
//	}
//	defer api.Close()
//
//	dj := dummyjson.New(api, logger)
//	if _, err := dj.Auth.Authenticate(ctx, "emilys", "emilyspass"); err != nil {
//		return err
//	}
//	page, err := dj.Users.Filter(ctx, "hair.color", "Brown", &dummyjson.ListOptions{Limit: 10})
package dummyjson
