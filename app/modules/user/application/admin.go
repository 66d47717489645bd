package userservice

import "context"

// ListUsers returns every account with its stats, oldest first.
func (s *UserService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	return withTelemetry(s, ctx, "ListUsers", "", func(ctx context.Context) ([]UserSummary, error) {
		users, err := s.repo.ListUsers(ctx, nil)
		if err != nil {
			return nil, err
		}
		out := make([]UserSummary, 0, len(users))
		for _, u := range users {
			out = append(out, UserSummary{
				Profile:   profileOf(u),
				Stats:     statsOf(u),
				CreatedAt: u.CreatedAt,
			})
		}
		return out, nil
	})
}

// DeleteUser removes any account.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	_, err := withTelemetry(s, ctx, "DeleteUser", userID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.deleteUser(ctx, userID)
	})
	return err
}
