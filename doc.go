/*
Package threadsposter posts one image from cloud object storage to Threads per run.

Each run lists the images in a bucket, picks one at random, signs a short-lived
GET URL for it, optionally asks Claude for a one-line caption, publishes the
image through the Threads Graph API and finally deletes the object so it is
never posted twice. A scheduler such as cron runs the binary periodically.

Storage providers:
  - OCI Object Storage through its S3 compatibility API (default)
  - Google Cloud Storage
  - Azure Blob Storage

Quick Start:

	go install github.com/SaiNageswarS/threads-poster/cmd/threads-poster@latest
	THREADS_ACCESS_TOKEN=... THREADS_USER_ID=... THREADS_BUCKET=quotes OCI_NAMESPACE=... threads-poster

Packages:

	config   settings from .env, an optional INI file and the environment
	cloud    ObjectStore and its OCI, GCS and Azure implementations
	caption  image download and Claude captioning with a fallback
	threads  Threads Graph API client
	notify   optional Telegram run summary
	poster   random selection and the posting pipeline
*/
package threadsposter
