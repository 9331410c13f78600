// Package authz decides whether a caller may perform an operation on the
// catalog.
//
// Every write handler runs two gates. Authorize is checked before the record
// is fetched and separates anonymous callers (ErrUnauthorized) from
// authenticated ones. AuthorizeObject is checked after the record is fetched
// and enforces ownership. This ordering yields 401, then 404, then 403.
//
//	policy := authz.Policy{Read: authz.ReadPublic, Model: authz.ModelOwner}
//	if err := policy.Authorize(authz.OperationUpdate, caller); err != nil {
//		// 401 or 403
//	}
//	book, err := books.FetchBook(ctx, id) // 404
//	if err := policy.AuthorizeObject(authz.OperationUpdate, caller, book.OwnerID); err != nil {
//		// 403
//	}
package authz
