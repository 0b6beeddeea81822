// Command coverdup is the one-shot CLI for the cover duplicate finder.
//
// It operates on the same fingerprint database as the coverdup
// service, so either side can crawl and either side can scan.
//
// Usage:
//
//	coverdup <command> [flags]
//
// Commands:
//
//	crawl    Walk the remote library's listing, fetch every archive's
//	         cover thumbnail, and store its fingerprints. Progress is
//	         printed as pages drain; an interrupted crawl resumes from
//	         the stored checkpoint with --resume.
//
//	scan     Group stored fingerprints into duplicate clusters and
//	         print each group with the reason it formed (exact checksum
//	         match or perceptual similarity). --json emits the same
//	         payload the service's /api/duplicates endpoint returns.
//
//	exclude  Record that two archives are not duplicates of each other,
//	         removing the pair from all future scans.
//
//	status   Show store statistics and, when a remote server is
//	         configured, its crawl checkpoint.
//
// Environment:
//
//	LRR_BASE_URL - Remote library URL (or --base-url)
//	LRR_API_KEY  - Remote API key (or --api-key; crawl prompts on a
//	               terminal when neither is set)
//	DATABASE_DIR - Path to database directory (default: /database)
//	PROFILE_LANG - Profile language tag (default: en)
//
// Notes:
//
// Scans are entirely local. A scan reflects whatever the last crawl
// stored, so crawl first when the remote library has changed.
package main
