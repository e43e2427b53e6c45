package firebase

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"regexp"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

var filenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	sanitized := filenameRe.ReplaceAllString(filename, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}

	return sanitized
}

var privateRanges = []*net.IPNet{
	parseCIDR("10.0.0.0/8"),
	parseCIDR("172.16.0.0/12"),
	parseCIDR("192.168.0.0/16"),
	parseCIDR("127.0.0.0/8"),
	parseCIDR("169.254.0.0/16"),
	parseCIDR("0.0.0.0/8"),
	parseCIDR("::1/128"),
	parseCIDR("fc00::/7"),
	parseCIDR("fe80::/10"),
}

// isPrivateIP checks whether an IP address is a private/reserved address.
func isPrivateIP(ip net.IP) bool {
	for _, network := range privateRanges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR: %s", cidr))
	}
	return network
}

// validateExternalURL rejects URLs that are not plain http(s) or that
// resolve to a private address.
func validateExternalURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme '%s' is not allowed; only http and https are permitted", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no hostname")
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("requests to localhost are not allowed")
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname '%s': %v", host, err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("URL resolves to private IP address %s, which is not allowed", ip.String())
		}
	}

	return nil
}

// credentialOptions accepts either inline service-account JSON or a path to
// a credentials file.
func credentialOptions(credentials string) []option.ClientOption {
	if credentials == "" {
		log.Println("WARNING: GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
		return nil
	}
	if strings.HasPrefix(strings.TrimSpace(credentials), "{") {
		log.Println("Using Firebase credentials from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credentials))}
	}
	log.Println("Using Firebase credentials from file:", credentials)
	return []option.ClientOption{option.WithCredentialsFile(credentials)}
}

// Init creates the Firebase app shared by the document store, the identity
// provider and the image bucket.
func Init(ctx context.Context, projectID, bucket, credentials string) (*firebase.App, error) {
	var conf *firebase.Config
	if projectID != "" || bucket != "" {
		conf = &firebase.Config{ProjectID: projectID, StorageBucket: bucket}
	}

	app, err := firebase.NewApp(ctx, conf, credentialOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	log.Println("Firebase initialized successfully")
	return app, nil
}

func NewFirestoreClient(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open firestore: %w", err)
	}
	return client, nil
}
