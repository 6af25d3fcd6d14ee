// Package instagram is the Instagram Business platform pack over the Graph API.
//
// Tenants hold an access token and optionally a default business account id; the
// instagram_business_account_id argument overrides it per call.
//
// Tools:
//
//	instagram.get_user_media  instagram.read   instagram_business_account_id, limit=5
//	instagram.post_image      instagram.write  instagram_business_account_id, image_url, caption
package instagram
