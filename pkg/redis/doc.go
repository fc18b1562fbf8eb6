// Package redis connects to the redis server that backs the shared tenant
// directory cache. Connect retries until the server answers PING; Healthcheck
// adapts a client to a health endpoint.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	cache := tenant.NewRedisCache(client, "tenantdir:", logger)
package redis
