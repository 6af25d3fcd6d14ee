// Package twitter is the Twitter (X) API v2 platform pack.
//
// Tenants authenticate either with an app-only bearer token or with the OAuth1
// user-context quadruple (api key, api secret, access token, access secret).
// Bearer requests are signed through golang.org/x/oauth2, OAuth1 requests through
// github.com/dghubble/oauth1.
//
// Tools:
//
//	twitter.get_timeline       twitter.read   username, max_results=5
//	twitter.get_tweet          twitter.read   tweet_id
//	twitter.get_home_timeline  twitter.read   count=20
//	twitter.post_tweet         twitter.write  content (1 to 280 characters)
package twitter
