package integration_testing

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// Suite spins up a real redis in docker and hands out clients bound to it.
type Suite struct {
	dockerPool *dockertest.Pool
	redisAddr  string
	teardown   []func()
}

func newSuite() (*Suite, error) {
	suite := &Suite{
		teardown: make([]func(), 0),
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping dockertest pool: %s", err)
	}
	suite.dockerPool = pool

	if err := suite.redisSetup(); err != nil {
		suite.cleanup()
		return nil, fmt.Errorf("failed to setup redis: %w", err)
	}

	return suite, nil
}

func (s *Suite) redisSetup() error {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "myinvite-test-redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		redisResource.Close()
	})

	s.redisAddr = "localhost:" + redisResource.GetPort("6379/tcp")

	// redis needs a moment to accept connections
	return s.dockerPool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: s.redisAddr})
		defer client.Close()
		return client.Ping(client.Context()).Err()
	})
}

func (s *Suite) newRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: s.redisAddr})
}

func (s *Suite) cleanup() {
	for _, teardown := range s.teardown {
		teardown()
	}
}
