// Package facebook is the Facebook Pages platform pack over the Graph API.
//
// Each tenant holds a page access token and, optionally, a page id (defaults to
// "me"). Tenants can also be derived from FB_ACCESS_TOKEN_<TENANT> and
// FB_PAGE_ID_<TENANT> when implicit registration is enabled.
//
// Tools:
//
//	facebook.post_message   facebook.post  message
//	facebook.get_page_feed  facebook.read  limit=5
//	facebook.post_image     facebook.post  image_url, message, published=true
//	facebook.post_video     facebook.post  video_url, message, published=true
package facebook
